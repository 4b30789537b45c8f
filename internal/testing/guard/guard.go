package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CLOSETRACK_TEST_MODE") == "" {
			_ = os.Setenv("CLOSETRACK_TEST_MODE", "1")
		}
	})
}
