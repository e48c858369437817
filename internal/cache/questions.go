package cache

import (
	"sync"
	"time"

	"github.com/rondoninha/leitura/internal/model"
)

const questionTTL = time.Minute

// QuestionCache memoizes the question board listing. Handlers invalidate it
// after posting a question or answer so the board reflects the write
// immediately.
type QuestionCache struct {
	load func() ([]model.Question, error)

	mu        sync.RWMutex
	cached    []model.Question
	loadedAt  time.Time
	haveValue bool
}

func NewQuestionCache(load func() ([]model.Question, error)) *QuestionCache {
	return &QuestionCache{load: load}
}

func (c *QuestionCache) Get() ([]model.Question, error) {
	c.mu.RLock()
	if c.haveValue && time.Since(c.loadedAt) < questionTTL {
		v := c.cached
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.haveValue && time.Since(c.loadedAt) < questionTTL {
		return c.cached, nil
	}

	v, err := c.load()
	if err != nil {
		if c.haveValue {
			return c.cached, nil
		}
		return nil, err
	}
	c.cached = v
	c.loadedAt = time.Now()
	c.haveValue = true
	return v, nil
}

func (c *QuestionCache) Invalidate() {
	c.mu.Lock()
	c.haveValue = false
	c.cached = nil
	c.mu.Unlock()
}
