package handlers

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	msgQuestionRequired = "Question is required"
	msgAnswerRequired   = "Answer is required"
	msgCommentRequired  = "Comment is required"
	msgContentTooShort  = "Content is required and must be at least 90 characters."
)

type startSessionForm struct {
	Content string `form:"content" binding:"required,min=90"`
}

type askForm struct {
	Content string `form:"content" binding:"trimmin=3"`
}

type answerForm struct {
	QuestionID string `form:"answer_to_question" binding:"required"`
	Answer     string `form:"answer" binding:"trimmin=3"`
}

type commentForm struct {
	Content string `form:"content" binding:"trimmin=3"`
}

type signupForm struct {
	Name     string `form:"name" binding:"required,min=2,max=32"`
	Password string `form:"password" binding:"required,min=6"`
	Captcha  string `form:"captcha" binding:"required"`
}

type loginForm struct {
	Name     string `form:"name" binding:"required"`
	Password string `form:"password" binding:"required"`
}

var registerOnce sync.Once

// registerValidators adds the custom rules to gin's validator engine.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("trimmin", trimMin); err != nil {
				panic(err)
			}
		}
	})
}

// trimMin checks the rune length of the field with surrounding whitespace removed.
func trimMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}
