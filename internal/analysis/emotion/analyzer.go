package emotion

import (
	"strings"

	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
)

// Suggestion 给出根据文字推断的心情以及命中得分。Score 为 0 表示没有明显情绪。
type Suggestion struct {
	Mood  mood.Mood `json:"mood"`
	Score int       `json:"score"`
}

// 按顺序遍历，得分相同时靠前的心情优先
var buckets = []struct {
	mood     mood.Mood
	keywords []string
}{
	{mood.Sad, []string{
		"sad", "lonely", "alone", "cry", "crying", "depressed", "upset", "hurt", "miss", "anxious",
		"scared", "stressed", "awful", "terrible", "worst", "hate", "nobody", "left out", "heartbroken",
		"难过", "伤心", "孤单", "寂寞", "哭", "沮丧", "失落", "焦虑",
	}},
	{mood.Happy, []string{
		"happy", "great", "awesome", "amazing", "good day", "love", "excited", "fun", "proud", "glad",
		"thanks", "thank you", "best", "yay", "haha", "lol", "friends",
		"开心", "高兴", "快乐", "太棒了", "哈哈",
	}},
	{mood.Meh, []string{
		"okay", "ok", "fine", "meh", "tired", "bored", "boring", "whatever", "so-so", "normal", "nothing much",
		"还行", "一般", "无聊", "累",
	}},
}

const exclamationBoost = 2

// Suggest 根据心情日志的备注推断最接近的心情，没有线索时返回 Meh。
func Suggest(text string) Suggestion {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Suggestion{Mood: mood.Meh}
	}

	scores := make(map[mood.Mood]int, len(buckets))
	for _, b := range buckets {
		for _, word := range b.keywords {
			if containsWord(normalized, word) {
				scores[b.mood] += 3
			}
		}
	}

	// 感叹号只放大已经出现的正面情绪
	if n := strings.Count(text, "!"); n > 0 && scores[mood.Happy] > 0 {
		scores[mood.Happy] += n * exclamationBoost
	}

	best := Suggestion{Mood: mood.Meh}
	for _, b := range buckets {
		if s := scores[b.mood]; s > best.Score {
			best = Suggestion{Mood: b.mood, Score: s}
		}
	}
	return best
}

// containsWord 对英文关键词要求词边界，避免 "ok" 命中 "book"；中文直接子串匹配。
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	if word[0] >= 0x80 {
		return strings.Contains(text, word)
	}
	for i := 0; ; {
		j := strings.Index(text[i:], word)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(word)
		if !isLetter(text, start-1) && !isLetter(text, end) {
			return true
		}
		i = start + 1
	}
}

func isLetter(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	c := text[i]
	return c >= 'a' && c <= 'z'
}
