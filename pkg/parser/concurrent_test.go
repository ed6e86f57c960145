package parser

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcurrentParsing(t *testing.T) {
	pm := newTestManager(t)

	const goroutines = 32
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			var (
				source string
				lang   Language
				isTSX  bool
			)
			switch i % 3 {
			case 0:
				source, lang = litSource, LanguageTypeScript
			case 1:
				source, lang = jsSource, LanguageJavaScript
			default:
				source, lang, isTSX = tsxSource, LanguageTypeScript, true
			}

			tree, err := pm.Parse([]byte(source), lang, isTSX)
			if err != nil {
				errs <- err
				return
			}
			defer tree.Close()
			if tree.RootNode().Kind() != "program" {
				errs <- fmt.Errorf("goroutine %d: unexpected root %s", i, tree.RootNode().Kind())
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	stats := pm.GetStats()
	assert.Equal(t, goroutines, stats.ParsesCalled)
	assert.LessOrEqual(t, stats.ParsersCreated, 3*getDefaultPoolSize())
}
