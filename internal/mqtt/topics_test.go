package mqtt

import "testing"

func TestTopicUserEmotion(t *testing.T) {
	got := TopicUserEmotion("emotion", "u-42")
	if got != "emotion/user/u-42/emotion" {
		t.Fatalf("topic=%q", got)
	}
}
