// 精灵图片的内存缓存，目录变化时热更新
package memimg

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
)

// Store 按文件名（不含扩展名）保存缩放到格子大小的图片
type Store struct {
	mu        sync.RWMutex
	sprites   map[string]image.Image
	blockSize int
}

func NewStore(blockSize int) *Store {
	return &Store{
		sprites:   make(map[string]image.Image),
		blockSize: blockSize,
	}
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func spriteName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadSprites 载入目录下所有图片
func (s *Store) LoadSprites(directory string) error {
	return filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isImage(path) {
			return nil
		}
		return s.loadSprite(path)
	})
}

func (s *Store) loadSprite(path string) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	// 预先缩放到格子大小，加速绘图
	scaled := imaging.Resize(img, s.blockSize, s.blockSize, imaging.Lanczos)

	s.mu.Lock()
	s.sprites[spriteName(path)] = scaled
	s.mu.Unlock()
	return nil
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// WatchSprites reloads sprites written to directory and drops removed ones
// until done is closed. onError receives watcher and decode errors.
func (s *Store) WatchSprites(directory string, done <-chan struct{}, onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(directory); err != nil {
		return err
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isImage(event.Name) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				if err := s.loadSprite(event.Name); err != nil && onError != nil {
					onError(err)
				}
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				s.mu.Lock()
				delete(s.sprites, spriteName(event.Name))
				s.mu.Unlock()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

// Get 从内存中取图片
func (s *Store) Get(name string) (image.Image, bool) {
	s.mu.RLock()
	img, exists := s.sprites[name]
	s.mu.RUnlock()
	return img, exists
}

// Len 已载入的图片数量
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sprites)
}
