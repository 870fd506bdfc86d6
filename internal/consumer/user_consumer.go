package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errMalformed = errors.New("malformed user message")

type userMessage struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	PhotoURL string      `json:"photo_url"`
	Role     models.Role `json:"role"`
}

// UserConsumer keeps the local user directory in step with user.* messages
// from the identity side.
type UserConsumer struct {
	users repository.UserRepository
}

func NewUserConsumer(users repository.UserRepository) *UserConsumer {
	return &UserConsumer{users: users}
}

func (uc *UserConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			uc.handleMessage(msg)
		}
		log.Println("[UserConsumer] channel closed, stopping consumer")
	}()
}

func (uc *UserConsumer) handleMessage(msg amqp.Delivery) {
	err := uc.handle(context.Background(), msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, errMalformed):
		log.Printf("[UserConsumer] dropping message %s: %v", msg.RoutingKey, err)
		msg.Nack(false, false)
	default:
		log.Printf("[UserConsumer] %v", err)
		msg.Nack(false, true) // requeue
	}
}

func (uc *UserConsumer) handle(ctx context.Context, body []byte) error {
	var m userMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	m.Email = strings.TrimSpace(m.Email)
	if m.Email == "" {
		return fmt.Errorf("%w: email is required", errMalformed)
	}
	if m.Role == "" {
		m.Role = models.RoleStudent
	}
	switch m.Role {
	case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", errMalformed, m.Role)
	}

	user := &models.User{Email: m.Email, Name: m.Name, PhotoURL: m.PhotoURL, Role: m.Role}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", m.Email, err)
	}

	log.Printf("[UserConsumer] synced user %s (%s)", user.Email, user.Role)
	return nil
}
