package video

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(discardLogger())
	require.NoError(t, err)
	return svc
}

func TestService_Library(t *testing.T) {
	svc := newTestService(t)

	all := svc.All()
	require.Len(t, all, 6)
	assert.Equal(t, "what-will-happen-to-chack", all[0].ID)
	assert.NoError(t, svc.Check(context.Background()))

	all[0].ID = "mutated"
	assert.Equal(t, "what-will-happen-to-chack", svc.All()[0].ID)
}

func TestService_Find(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name       string
		identifier string
		wantID     string
	}{
		{name: "by id", identifier: "dotnet10-overview", wantID: "dotnet10-overview"},
		{name: "by id any case", identifier: "ASPNET-CORE-10", wantID: "aspnet-core-10"},
		{name: "by title", identifier: "What will happen to Chack?", wantID: "what-will-happen-to-chack"},
		{name: "by title any case", identifier: "c# 14 language features", wantID: "csharp14-features"},
		{name: "partial title", identifier: "Aspire"},
		{name: "unknown", identifier: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := svc.Find(tt.identifier)
			if tt.wantID == "" {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, tt.wantID, v.ID)
		})
	}
}

func TestService_InvalidLibrary(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed", data: `{"videos":[`},
		{name: "missing url", data: `{"videos":[{"id":"a","title":"A","description":"d"}]}`},
		{name: "bad url", data: `{"videos":[{"id":"a","title":"A","description":"d","videoUrl":"not a url"}]}`},
		{name: "duplicate id", data: `{"videos":[
			{"id":"a","title":"A","description":"d","videoUrl":"https://x/a.mp4"},
			{"id":"A","title":"B","description":"d","videoUrl":"https://x/b.mp4"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newServiceFromFS(fstest.MapFS{libraryFile: {Data: []byte(tt.data)}}, discardLogger())
			assert.Error(t, err)
		})
	}

	_, err := newServiceFromFS(fstest.MapFS{}, discardLogger())
	assert.Error(t, err)
}
