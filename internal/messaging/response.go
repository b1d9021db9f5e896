package messaging

import (
	"encoding/json"
	"net/http"
	"strings"

	"auctions/internal/apperrors"
)

// Response тело ответа воркера. Всегда содержит "ok" и "status_code".
type Response map[string]any

func (r Response) OK() bool {
	ok, _ := r["ok"].(bool)
	return ok
}

func (r Response) StatusCode() int {
	switch v := r["status_code"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func successStatus(status int) bool {
	return status >= 200 && status < 300
}

func decode(r rawResponse) (Response, error) {
	if r.status == http.StatusNoContent || len(r.body) == 0 {
		return Response{"ok": true, "status_code": r.status}, nil
	}

	if strings.Contains(strings.ToLower(r.contentType), "application/json") {
		var data Response
		if err := json.Unmarshal(r.body, &data); err != nil || data == nil {
			return nil, apperrors.ServiceError(r.status, "invalid JSON in response").WithCause(err)
		}
		if _, ok := data["ok"]; !ok {
			data["ok"] = successStatus(r.status)
		}
		data["status_code"] = r.status
		return data, nil
	}

	return Response{
		"ok":          successStatus(r.status),
		"status_code": r.status,
		"raw":         string(r.body),
	}, nil
}
