package testutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
)

type RequestOptions struct {
	headers map[string]string
}

type RequestArgs struct {
	Router http.Handler
	Method string
	URL    string
	Body   io.Reader
}

// MakeRequest прогоняет запрос через роутер и возвращает записанный ответ.
func MakeRequest(args RequestArgs, opts ...func(*RequestOptions)) (*http.Response, error) {
	options := RequestOptions{
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(&options)
	}

	request := httptest.NewRequest(args.Method, args.URL, args.Body)
	for k, v := range options.headers {
		request.Header.Set(k, v)
	}

	recorder := httptest.NewRecorder()
	args.Router.ServeHTTP(recorder, request)

	return recorder.Result(), nil
}

func WithHeader(name, value string) func(*RequestOptions) {
	return func(fn *RequestOptions) {
		fn.headers[name] = value
	}
}

// WithJSON помечает тело запроса как JSON.
func WithJSON() func(*RequestOptions) {
	return WithHeader("Content-Type", "application/json")
}

// DecodeJSON читает тело ответа в dst и закрывает его.
func DecodeJSON(res *http.Response, dst any) error {
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response body: %s", err.Error())
	}
	return nil
}

// GenerateOverBytesUnderRunes генерирует строку, длина которой в рунах будет всегда меньше длины в байтах.
func GenerateOverBytesUnderRunes(count int) string {
	symbol := "😁" // 4 байта, 1 руна
	return strings.Repeat(symbol, count)
}
