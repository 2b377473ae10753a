package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxPayloadBytes = 1 << 20

// readPayload decodes a JSON object or a urlencoded/multipart form into a
// generic map. JSON keeps value types so callers can tell a string from a
// number. An empty body is an empty payload.
func readPayload(c *gin.Context) (map[string]any, error) {
	out := map[string]any{}
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		dec := json.NewDecoder(io.LimitReader(c.Request.Body, maxPayloadBytes))
		if err := dec.Decode(&out); err != nil {
			if errors.Is(err, io.EOF) {
				return map[string]any{}, nil
			}
			return nil, err
		}
		return out, nil
	}

	var err error
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		err = c.Request.ParseMultipartForm(maxPayloadBytes)
	} else {
		err = c.Request.ParseForm()
	}
	if err != nil {
		return nil, err
	}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out, nil
}

// stringField returns p[key] as text. Absent and null give "".
func stringField(p map[string]any, key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
