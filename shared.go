package starnotify

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func initHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// decodeResponse unmarshals a JSON payload into dest, which must be a pointer.
func decodeResponse(payload io.Reader, dest interface{}) error {
	d := json.NewDecoder(payload)
	if err := d.Decode(&dest); err != nil {
		return errors.Wrap(err, "error decoding JSON body")
	}
	return nil
}

var countPrinter = message.NewPrinter(language.English)

// formatCount renders n with thousands separators, e.g. 12,345.
func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
