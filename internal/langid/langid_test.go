package langid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEnglish(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain request", "Please write a function that parses the config file and returns an error when the file is missing.", true},
		{"short question", "How do I read a file in Go?", true},
		{"chinese", "请帮我写一个解析配置文件的函数", false},
		{"russian", "Напишите функцию, которая разбирает файл конфигурации", false},
		{"empty", "", false},
		{"only symbols", "===> !!! ??? 123 456", false},
		{"only code", "x=1;y=2;z=x+y;", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsEnglish(tt.text))
		})
	}
}

func TestIsEnglishConcurrent(t *testing.T) {
	c := New()
	done := make(chan bool)
	for range 8 {
		go func() {
			done <- c.IsEnglish("What does this function do when the input is empty?")
		}()
	}
	for range 8 {
		assert.True(t, <-done)
	}
}
