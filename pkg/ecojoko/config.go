package ecojoko

import (
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/tempotrack/tempotrack/pkg/common"
)

// Configured sets up the Ecojoko client from flags.
func Configured() *Client {
	c := &Client{}

	username := lflag.RequiredString("ecojoko-username", "Ecojoko account email")
	password := lflag.RequiredString("ecojoko-password", "Ecojoko account password")
	baseURL := lflag.String("ecojoko-base-url", "https://service.ecojoko.com", "Base URL for the Ecojoko service")
	timeout := lflag.Duration("ecojoko-timeout", 3*time.Second, "Per-call timeout for Ecojoko requests")

	lflag.Do(func() {
		c.username = *username
		c.password = *password
		c.baseURL = *baseURL
		c.client = common.HTTPClient(*timeout)
	})

	return c
}
