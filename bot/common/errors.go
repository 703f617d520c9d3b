package common

import (
	"errors"
	"fmt"

	"lotteryledger/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Ephemeral   bool
	Err         error
	Context     interface{}
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether the error was caused by the user rather than the system
func (e *BotError) IsUserError() bool {
	return e.Err == nil || isDomainRejection(e.Err)
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

var domainRejections = []error{
	entities.ErrNotOwner,
	entities.ErrInvalidTransition,
	entities.ErrInvalidPayment,
	entities.ErrInvalidLotteryConfig,
	entities.ErrLotteryNotFound,
	entities.ErrLotteryExists,
	entities.ErrInsufficientBalance,
	entities.ErrUserNotFound,
}

func isDomainRejection(err error) bool {
	for _, target := range domainRejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MapServiceError converts a service error into a BotError.
// Domain rejections keep their own message so users see exactly why the
// operation was refused; anything else becomes a generic system error.
func MapServiceError(err error, logMessage string) *BotError {
	if err == nil {
		return nil
	}

	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}

	for _, target := range domainRejections {
		if errors.Is(err, target) {
			return &BotError{
				UserMessage: rejectionMessage(err, target),
				LogMessage:  logMessage,
				Ephemeral:   true,
				Err:         err,
			}
		}
	}

	return NewSystemError(err, logMessage)
}

func rejectionMessage(err, target error) string {
	// Transition errors carry the specific precondition in their own message
	var transitionErr *entities.TransitionError
	if errors.As(err, &transitionErr) {
		return transitionErr.Error()
	}
	return target.Error()
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err and tells the user what went wrong
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	botErr := MapServiceError(err, "Unexpected error in bot interaction")

	fields := log.Fields{
		"user_id":      InteractionUserID(i),
		"interaction":  InteractionName(i),
		"error":        botErr.Error(),
		"user_message": botErr.UserMessage,
	}
	if botErr.Context != nil {
		fields["context"] = botErr.Context
	}

	if botErr.IsUserError() {
		log.WithFields(fields).Info(botErr.LogMessage)
	} else {
		log.WithFields(fields).Error(botErr.LogMessage)
	}

	if deferred {
		FollowUpWithError(s, i, botErr.UserMessage)
	} else {
		RespondWithError(s, i, botErr.UserMessage)
	}
}

// InteractionName returns the command name or component custom ID of an interaction
func InteractionName(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	default:
		return i.Type.String()
	}
}

// InteractionUserID returns the ID of the user behind an interaction
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
