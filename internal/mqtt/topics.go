package mqtt

import "fmt"

func TopicUserEmotion(prefix, userID string) string {
	return fmt.Sprintf("%s/user/%s/emotion", prefix, userID)
}
