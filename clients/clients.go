// Package clients holds the typed REST shims for the three hosted services
// this server delegates to: the identity service (authentication and
// document storage), the bank data aggregator (account linking), and the
// funds transfer service (payment customers and funding sources).
//
// Every shim is a thin request/response pass-through. Responses are decoded
// into plain structs from the models package before they cross back to the
// caller; no handle or service-specific type ever leaks out of this package.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
)

// ServiceError is any non-2xx answer from a hosted service, annotated with
// which service produced it.
type ServiceError struct {
	Service string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Message)
}

func serviceError(service string, resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	b, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(b, &body)
	return &ServiceError{Service: service, Status: resp.StatusCode, Message: body.Message}
}

func doJSON(ctx context.Context, hc *http.Client, method, url string, header http.Header, in interface{}) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return hc.Do(req)
}

func decodeJSON(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if out == nil {
		_, err := io.Copy(ioutil.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
