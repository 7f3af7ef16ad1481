package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vizcore/dvz/engine/assets/loaders"
	"github.com/vizcore/dvz/engine/core"
)

// AssetInfo tracks a discovered on-disk asset and when it was last
// (re)loaded, so the fsnotify watcher can decide whether to reload it.
type AssetInfo struct {
	Path       string
	Type       ResourceType
	LastLoaded time.Time
}

// Manager indexes the asset tree under a root directory, watches it for
// changes with fsnotify, and dispatches loads to the registered per-type
// Loader. A changed shader .spv file marks its owning catalogue entry
// dirty for refill on the next frame (see the graphics package).
type Manager struct {
	assets  map[string]*AssetInfo
	loaders map[ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool

	// Changed receives the path of any asset that changed on disk after
	// Initialize has been called, so callers (e.g. the graphics
	// catalogue) can react to shader hot-reload.
	Changed chan string
}

func NewManager() (*Manager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Manager{
		assets:   make(map[string]*AssetInfo),
		loaders:  make(map[ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		Changed:  make(chan string, 64),
	}, nil
}

func (am *Manager) Initialize(assetsDir string) error {
	go am.start()

	if err := am.addRecursive(assetsDir); err != nil {
		return err
	}

	am.registerLoader(ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(ResourceTypeBinary, &loaders.BinaryLoader{})
	am.registerLoader(ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(ResourceTypeBitmapFont, &loaders.BitmapFontLoader{
		ResourcePath: assetsDir,
	})
	am.registerLoader(ResourceTypeSystemFont, &loaders.SystemFontLoader{})

	return nil
}

func (am *Manager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

func (am *Manager) registerLoader(assetType ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

var imageExtensions = []string{".tga", ".png", ".jpg", ".bmp"}

// Load finds the named asset of resourceType under assetsDir and decodes
// it with the registered Loader.
func (am *Manager) Load(filename string, resourceType ResourceType, params interface{}) (*Resource, error) {
	var asset *AssetInfo
	var path string
	switch resourceType {
	case ResourceTypeImage:
		found := false
		for i := 0; i < len(imageExtensions); i++ {
			path = fmt.Sprintf("assets/textures/%s%s", filename, imageExtensions[i])
			asset = am.assetExists(path)
			if asset != nil {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("asset with name %s not found", filename)
		}
	case ResourceTypeShader:
		path = fmt.Sprintf("assets/shaders/%s.spv", filename)
		asset = am.assetExists(path)
	case ResourceTypeBinary:
		path = fmt.Sprintf("assets/%s", filename)
		params = map[string]string{"name": filename}
		asset = am.assetExists(path)
	case ResourceTypeSystemFont:
		path = fmt.Sprintf("assets/fonts/%s.fontcfg", filename)
		asset = am.assetExists(path)
	case ResourceTypeBitmapFont:
		path = fmt.Sprintf("assets/fonts/%s.fnt", filename)
		asset = am.assetExists(path)
	default:
		return nil, fmt.Errorf("unknown resource type")
	}

	if asset == nil {
		return nil, fmt.Errorf("asset not found: %s", path)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", asset.Type)
	}

	return loader.Load(path, resourceType, params)
}

func (am *Manager) assetExists(path string) *AssetInfo {
	am.mutex.RLock()
	asset, exists := am.assets[path]
	am.mutex.RUnlock()
	if !exists {
		return nil
	}
	asset.LastLoaded = time.Now()
	return asset
}

func (am *Manager) Unload(resource *Resource) error {
	return nil
}

func (am *Manager) start() {
	for {
		select {
		case e := <-am.fsnotify.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
				select {
				case am.Changed <- e.Name:
				default:
				}
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case e := <-am.fsnotify.Errors:
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *Manager) watchRecursive(path string, unWatch bool) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	wd = wd + "/"
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			am.mutex.RLock()
			defer am.mutex.RUnlock()
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(strings.TrimPrefix(walkPath, wd))
		return nil
	})
}

func (am *Manager) handleFileEvent(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	assetType := determineAssetType(path)
	if assetType == ResourceTypeNone {
		return
	}
	am.assets[path] = &AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

func (am *Manager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, path)
}

func determineAssetType(path string) ResourceType {
	switch filepath.Ext(path) {
	case ".fontcfg":
		return ResourceTypeSystemFont
	case ".fnt":
		return ResourceTypeBitmapFont
	case ".spv":
		return ResourceTypeShader
	case ".png", ".jpg", ".tga", ".bmp":
		return ResourceTypeImage
	default:
		return ResourceTypeNone
	}
}
