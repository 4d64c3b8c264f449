package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	msgAuthRequired   = "인증이 필요합니다. 다시 로그인해주세요."
	msgValidation     = "입력 정보를 확인해주세요"
	msgBadCredentials = "아이디 또는 비밀번호가 올바르지 않습니다"
	msgLoginFailed    = "로그인에 실패했습니다"
	maxErrorBodyBytes = 1 << 20 // 1 MB
)

// errorBody is the FastAPI error envelope. detail is either a string or a
// list of {loc, msg, type} validation items.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// parseErrorBody decodes body defensively; malformed JSON yields an empty envelope.
func parseErrorBody(body []byte) errorBody {
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil {
		return errorBody{}
	}
	return eb
}

// detailString returns detail when it is a non-empty JSON string.
func (eb errorBody) detailString() string {
	if len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(eb.Detail, &s) != nil {
		return ""
	}
	return s
}

// validationMessages returns the msg of each item when detail is an array.
func (eb errorBody) validationMessages() ([]string, bool) {
	if len(eb.Detail) == 0 || eb.Detail[0] != '[' {
		return nil, false
	}
	var items []validationItem
	if json.Unmarshal(eb.Detail, &items) != nil {
		return nil, false
	}
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg != "" {
			msgs = append(msgs, it.Msg)
		}
	}
	return msgs, true
}

// statusText returns the reason phrase of resp, e.g. "Not Found".
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// mapError converts a non-2xx response into an *HTTPError.
func mapError(resp *http.Response, body []byte) *HTTPError {
	eb := parseErrorBody(body)
	detail := eb.detailString()
	code := resp.StatusCode

	switch {
	case code == http.StatusUnauthorized:
		msg := detail
		if msg == "" {
			msg = msgAuthRequired
		}
		return &HTTPError{Kind: KindAuth, StatusCode: code, Message: msg, Detail: detail}
	case code == http.StatusForbidden:
		msg := detail
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: %s", code, statusText(resp))
		}
		return &HTTPError{Kind: KindAuth, StatusCode: code, Message: msg, Detail: detail}
	case code == http.StatusBadRequest && detail != "":
		return &HTTPError{Kind: KindConflict, StatusCode: code, Message: detail, Detail: detail}
	case code == http.StatusUnprocessableEntity:
		if msgs, ok := eb.validationMessages(); ok {
			msg := strings.Join(msgs, ", ")
			if msg == "" {
				msg = msgValidation
			}
			return &HTTPError{Kind: KindValidation, StatusCode: code, Message: msg}
		}
	}

	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", code, statusText(resp))
	}
	return &HTTPError{Kind: KindUnknown, StatusCode: code, Message: msg, Detail: detail}
}

// mapLoginError applies the login form's own mapping: bad credentials are an
// auth failure with a fixed message regardless of the backend's wording.
func mapLoginError(resp *http.Response, body []byte) *HTTPError {
	eb := parseErrorBody(body)
	detail := eb.detailString()
	code := resp.StatusCode

	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return &HTTPError{Kind: KindAuth, StatusCode: code, Message: msgBadCredentials, Detail: detail}
	case http.StatusUnprocessableEntity:
		if msgs, ok := eb.validationMessages(); ok {
			msg := strings.Join(msgs, ", ")
			if msg == "" {
				msg = msgValidation
			}
			return &HTTPError{Kind: KindValidation, StatusCode: code, Message: msg}
		}
	}
	msg := detail
	if msg == "" {
		msg = msgLoginFailed
	}
	return &HTTPError{Kind: KindUnknown, StatusCode: code, Message: msg, Detail: detail}
}
