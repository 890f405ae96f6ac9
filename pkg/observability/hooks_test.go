package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Viewport hooks
	v := NoopViewportHooks{}
	v.OnRebuild("resize", 500, 400)
	v.OnGesture("wheel", 1.25, true, false)
	v.OnRedraw(true, time.Millisecond, nil)
	v.OnDomainChange("x", 0, 100, true)

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "chart.toml")
	p.OnLoadComplete(ctx, "chart.toml", 2, time.Second, nil)
	p.OnReplayStart(ctx, 5)
	p.OnReplayComplete(ctx, 5, 3, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "artifact")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/api/viewports/abc")
	h.OnResponse(ctx, "GET", "/api/viewports/abc", 200, time.Second)
	h.OnError(ctx, "GET", "/api/viewports/abc", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Viewport().(NoopViewportHooks); !ok {
		t.Error("Viewport() should return NoopViewportHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customViewport := &testViewportHooks{}
	SetViewportHooks(customViewport)
	if Viewport() != customViewport {
		t.Error("SetViewportHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Viewport().(NoopViewportHooks); !ok {
		t.Error("Reset() should restore NoopViewportHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testViewportHooks{}
	SetViewportHooks(custom)

	// Setting nil should be ignored
	SetViewportHooks(nil)

	if Viewport() != custom {
		t.Error("SetViewportHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testViewportHooks struct{ NoopViewportHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
