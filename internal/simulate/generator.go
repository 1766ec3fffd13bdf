package simulate

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/matchbot/pkg/logger"
)

// Every unsupportedEvery-th message carries an image, which the bot declines.
const unsupportedEvery = 7

// jobRequests are the free-text job descriptions recruiters send.
var jobRequests = []string{ //nolint:gochecknoglobals // static corpus
	"Je cherche un développeur Go senior à Paris, 5 ans d'expérience minimum",
	"Besoin d'un data engineer à Lyon, Spark et Airflow",
	"Recherche chef de projet digital, télétravail possible",
	"Looking for a backend engineer in Berlin with Kubernetes experience",
	"Infirmier de nuit pour une clinique à Marseille",
	"Commercial B2B junior, secteur logiciel, Bordeaux",
	"Product designer with Figma, remote within Europe",
	"Comptable confirmé pour un cabinet à Nantes",
	"Technicien de maintenance industrielle, Lille",
	"Machine learning engineer, NLP, Paris or London",
}

// generateConversations builds one conversation per sender.
func generateConversations(ctx context.Context, config *Config, stats *Stats) []Conversation {
	convs := make([]Conversation, config.Senders)
	seq := 0
	for i := range convs {
		from := fmt.Sprintf("whatsapp:+3361%07d", i)
		turns := 1 + randomInt(3)
		msgs := make([]Message, 0, turns+1)
		for t := 0; t < turns; t++ {
			seq++
			msg := Message{SID: newSID(), From: from}
			if seq%unsupportedEvery == 0 {
				msg.MediaURL = "https://api.twilio.com/media/" + msg.SID
				msg.MediaType = "image/jpeg"
			} else {
				msg.Body = jobRequests[randomInt(len(jobRequests))]
			}
			msgs = append(msgs, msg)
			if config.DuplicateEvery > 0 && seq%config.DuplicateEvery == 0 {
				dup := msg
				dup.Redelivery = true
				msgs = append(msgs, dup)
			}
		}
		convs[i] = Conversation{From: from, Messages: msgs}
	}

	stats.Conversations = len(convs)
	logger.Get().Info(ctx, "conversations generated",
		logger.Int("conversations", len(convs)),
		logger.Int("messages", countMessages(convs)))
	return convs
}

// newSID returns a Twilio-shaped message SID.
func newSID() string {
	return "SM" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// randomInt returns a random int in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func countMessages(convs []Conversation) int {
	n := 0
	for _, c := range convs {
		n += len(c.Messages)
	}
	return n
}
