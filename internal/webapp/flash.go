package webapp

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

const flashCookie = "tp_flash"

// Flash is a one-shot notification carried across a redirect and consumed by
// the next rendered view. Kind is "success" or "error".
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func setFlash(c *gin.Context, kind, message string) {
	b, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	c.SetCookie(flashCookie, base64.URLEncoding.EncodeToString(b), 60, "/", "", false, true)
}

func takeFlash(c *gin.Context) *Flash {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	b, err := base64.URLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var f Flash
	if json.Unmarshal(b, &f) != nil {
		return nil
	}
	return &f
}
