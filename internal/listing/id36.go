package listing

import (
	"fmt"
	"strconv"
	"strings"
)

// ID36 encodes a topic id in base 36, the form used for pagination anchors
func ID36(id int64) string {
	return strconv.FormatInt(id, 36)
}

// ParseID36 decodes a base 36 id. An empty string decodes to 0.
func ParseID36(id36 string) (int64, error) {
	if id36 == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(strings.ToLower(id36), 36, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id36 %q", id36)
	}
	return id, nil
}
