package aemtest

import "net/http"

// Reply is a canned response.
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSON replies 200 with an application/json body.
func JSON(body []byte) Reply {
	return Reply{Status: http.StatusOK, ContentType: "application/json;charset=utf-8", Body: body}
}

// JSONString replies 200 with an application/json body.
func JSONString(body string) Reply {
	return JSON([]byte(body))
}

// TextPlain replies 200 with a text/plain body. The package list endpoint
// answers XML this way.
func TextPlain(body []byte) Reply {
	return Reply{Status: http.StatusOK, ContentType: "text/plain;charset=utf-8", Body: body}
}

// HTML replies with the given status and a text/html body.
func HTML(status int, body string) Reply {
	return Reply{Status: status, ContentType: "text/html;charset=utf-8", Body: []byte(body)}
}

// NoContent replies 204.
func NoContent() Reply {
	return Reply{Status: http.StatusNoContent}
}
