package services

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"ama/internal/utils"
)

// CaptchaSessionKey is where the expected answer lives in the cookie session.
const CaptchaSessionKey = "captcha_answer"

// CaptchaService issues small arithmetic challenges for the signup form.
type CaptchaService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	seed := uint64(time.Now().UnixNano())
	return newCaptchaService(rand.NewPCG(seed, seed>>1))
}

func newCaptchaService(src rand.Source) *CaptchaService {
	return &CaptchaService{rnd: rand.New(src)}
}

// Challenge returns a display string such as "7 - 3" and its answer.
// Subtraction never goes negative.
func (s *CaptchaService) Challenge() (string, int) {
	s.mu.Lock()
	a, b, op := s.rnd.IntN(10), s.rnd.IntN(10), s.rnd.IntN(2)
	s.mu.Unlock()

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// Verify compares user input with the answer stored in the session. Cookie
// sessions round-trip ints through gob, so only int is accepted.
func (s *CaptchaService) Verify(expected any, input string) bool {
	want, ok := expected.(int)
	if !ok {
		return false
	}
	return utils.AtoiOr(input, -1) == want
}
