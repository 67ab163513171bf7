package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"loyalty-system/internal/config"
)

// SessionCookieName 会话Cookie名称
const SessionCookieName = "loyalty_session"

// Session 会话Cookie解析中间件
// 只解析不拦截：Cookie合法时把客户ID放进上下文，否则按匿名请求继续
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		if err == nil && cookie != "" {
			token, err := jwt.Parse(cookie, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(config.GlobalConfig.Session.Secret), nil
			})
			if err == nil && token.Valid {
				if claims, ok := token.Claims.(jwt.MapClaims); ok {
					if id, ok := claims["customer_id"].(string); ok {
						c.Set("customer_id", id)
					}
				}
			}
		}

		c.Next()
	}
}
