package sharing

import (
	"fmt"
	"strings"
	"time"

	"github.com/vbonduro/photoshare/internal/domain"
)

const messageDateLayout = "January 2, 2006"

// maxTagsPerPhoto bounds how many of each photo's tags make it into a message.
const maxTagsPerPhoto = 3

// ShareMessage is the notification body sent to a recipient.
func ShareMessage(sender string, photoCount int, tags []string, at time.Time) string {
	if sender == "" {
		sender = "I"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s shared %d photo(s) with you!", sender, photoCount)
	if len(tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s", strings.Join(tags, ", "))
	}
	fmt.Fprintf(&b, "\n%s", at.UTC().Format(messageDateLayout))
	return b.String()
}

// HistoryMessage is the body used when re-opening the messenger from history.
func HistoryMessage(s *domain.Share) string {
	return fmt.Sprintf("Share History: %s shared %d photo(s) with you!\n%s",
		s.From, s.Count(), s.CreatedAt.UTC().Format(messageDateLayout))
}

// MessageTags collects the first few tags of each photo, without repeats,
// in first-seen order.
func MessageTags(photos []domain.Photo) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, p := range photos {
		for i, t := range p.Tags {
			if i >= maxTagsPerPhoto {
				break
			}
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// RecipientMessage addresses the recipient by name. The recorder uses it when
// the service did not return a prebuilt link.
func RecipientMessage(recipient string, photoCount int, at time.Time) string {
	return fmt.Sprintf("Hi %s! I shared %d photo(s) with you.\n%s",
		recipient, photoCount, at.UTC().Format(messageDateLayout))
}
