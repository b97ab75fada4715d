package build

import (
	"path/filepath"
	"sync"

	"github.com/goplus/jcbuild/pkgs/sdk"
)

// sdkCache remembers detected SDKs by absolute root, so packages of one
// invocation sharing a kit inspect it once.
type sdkCache struct {
	mu     sync.Mutex
	detect sdk.DetectFunc
	kits   map[string]*sdk.SDK
}

func newSDKCache(detect sdk.DetectFunc) *sdkCache {
	return &sdkCache{detect: detect, kits: make(map[string]*sdk.SDK)}
}

// get returns the SDK at root. Failed detections are not remembered.
func (c *sdkCache) get(root string) (*sdk.SDK, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if kit, ok := c.kits[root]; ok {
		return kit, nil
	}
	kit, err := c.detect(root)
	if err != nil {
		return nil, err
	}
	c.kits[root] = kit
	return kit, nil
}
