package middleware

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-Id"

var (
	ridMu  sync.Mutex
	ridRnd = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			ridMu.Lock()
			n := ridRnd.Intn(100000)
			ridMu.Unlock()
			rid = fmt.Sprintf("req_%d_%d", time.Now().UnixNano(), n)
		}
		c.Set(RequestIDHeader, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Next()
	}
}
