package delivery

import (
	"testing"

	"atelier-go/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestComposeMessage(t *testing.T) {
	drop := &model.Drop{
		Title: "八月画廊上新",
		Body:  "本月共上架 12 件新作品。",
	}

	msg := composeMessage(drop, "alice@example.com")

	assert.Equal(t, "To: alice@example.com\nSubject: 八月画廊上新\n\n本月共上架 12 件新作品。\n", msg)
}
