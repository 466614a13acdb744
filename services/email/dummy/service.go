package dummymail

import (
	"sync"

	"github.com/kwanjiru/eduid/core"
)

var (
	// SentMessages records everything sent; tests inspect and reset it.
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

// service records messages synchronously without delivering anything.
type service struct {
	subjPrefix string
}

var _ core.EmailService = (*service)(nil)

func NewService(appName string) core.EmailService {
	return &service{subjPrefix: "[" + appName + "] "}
}

func (svc service) SendMessages(messages ...*core.EmailMessage) {
	mu.Lock()
	defer mu.Unlock()
	for _, msg := range messages {
		if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
			sent := *msg
			sent.Subject = svc.subjPrefix + sent.Subject
			SentMessages = append(SentMessages, sent)
		}
	}
}

// Reset clears the recorded messages.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	SentMessages = SentMessages[:0]
}
