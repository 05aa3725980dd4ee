package migrate

import (
	"fmt"
	"strings"
)

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, "sslmode=") {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	}
	return fmt.Sprintf("%s?%s", url, options)
}
