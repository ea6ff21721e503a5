package config

import (
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kbukum/wirekit/logger"
)

// Watcher re-reads a config file when it changes on disk and delivers
// typed snapshots to a callback. It is used for live re-tuning of
// runtime knobs such as the optimizer interval and promotion threshold.
type Watcher[C any] struct {
	v        *viper.Viper
	log      *logger.Logger
	onChange func(*C)
	closed   atomic.Bool
}

// Watch starts watching configFile. The callback receives a freshly
// unmarshaled snapshot after every change; snapshots that fail to
// unmarshal are logged and dropped. The initial file content is read
// eagerly so Load works immediately.
func Watch[C any](configFile string, onChange func(*C)) (*Watcher[C], error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
	}

	w := &Watcher[C]{
		v:        v,
		log:      logger.Get("config"),
		onChange: onChange,
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if w.closed.Load() {
			return
		}
		w.log.Debug("config file changed", logger.Fields("file", e.Name, "op", e.Op.String()))
		w.reload()
	})
	v.WatchConfig()

	return w, nil
}

// Load returns the current file content unmarshaled into C.
func (w *Watcher[C]) Load() (*C, error) {
	var cfg C
	if err := w.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Close stops change delivery. The underlying file watch lives until
// process exit; viper offers no unwatch.
func (w *Watcher[C]) Close() {
	w.closed.Store(true)
}

func (w *Watcher[C]) reload() {
	cfg, err := w.Load()
	if err != nil {
		w.log.Warn("ignoring config change", logger.Fields(logger.FieldError, err.Error()))
		return
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
