// Package mockposter provides a testify mock of transport.Poster.
package mockposter

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/aradsms/bdappsapi/pkg/bdapps/transport"
)

// MockPoster provides a mock implementation of the transport.Poster interface.
type MockPoster struct {
	mock.Mock
}

func (m *MockPoster) Post(ctx context.Context, path string, body any) (transport.Response, error) {
	args := m.Called(ctx, path, body)
	var resp transport.Response
	if r := args.Get(0); r != nil {
		resp = r.(transport.Response)
	}
	return resp, args.Error(1)
}

// BodyMap returns the JSON object body would be sent as.
func BodyMap(body any) map[string]any {
	raw, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

// Body returns the request body passed to the first recorded Post call.
func (m *MockPoster) Body() map[string]any {
	for _, c := range m.Calls {
		if c.Method == "Post" {
			return BodyMap(c.Arguments.Get(2))
		}
	}
	return nil
}
