package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlecomte/papote/internal/email"
	"github.com/mlecomte/papote/internal/models"
	"github.com/mlecomte/papote/internal/store"
)

const timeLayout = "15:04"

// ChatService owns every operation on the user collection. Each mutating
// method is a single load-modify-save cycle against the store: the store is
// the sole source of truth and nothing is cached between requests.
//
// There is no concurrency control across cycles. Two racing requests can
// interleave so that the later save clobbers the earlier one; this
// last-writer-wins hazard is inherited from the original design.
type ChatService struct {
	store  store.Store
	mailer *email.Sender
	log    *logrus.Logger
}

// New constructs a ChatService. mailer may be nil to disable welcome emails.
func New(st store.Store, mailer *email.Sender, log *logrus.Logger) *ChatService {
	return &ChatService{store: st, mailer: mailer, log: log}
}

// Register creates a new account with empty contact and conversation lists.
func (s *ChatService) Register(userEmail, password string) error {
	users, err := s.store.LoadAll()
	if err != nil {
		return err
	}
	if models.FindUser(users, userEmail) != -1 {
		return ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	users = append(users, models.User{
		Email:         userEmail,
		Password:      string(hashed),
		Contacts:      []models.Contact{},
		Groups:        []models.Conversation{},
		Conversations: []models.Conversation{},
	})
	if err := s.store.SaveAll(users); err != nil {
		return err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(userEmail); err != nil {
			s.log.WithError(err).WithField("email", userEmail).
				Warn("could not send welcome email")
		}
	}
	return nil
}

// Login checks the credentials and returns the matching user.
func (s *ChatService) Login(userEmail, password string) (models.User, error) {
	users, err := s.store.LoadAll()
	if err != nil {
		return models.User{}, err
	}
	i := models.FindUser(users, userEmail)
	if i == -1 {
		return models.User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(users[i].Password), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return users[i], nil
}

func (s *ChatService) GetUser(userEmail string) (models.User, error) {
	users, err := s.store.LoadAll()
	if err != nil {
		return models.User{}, err
	}
	i := models.FindUser(users, userEmail)
	if i == -1 {
		return models.User{}, ErrUserNotFound
	}
	return users[i], nil
}

// UserPatch carries the fields a PUT /user request may replace. A nil field
// was absent from the request; a present field overwrites the stored list
// wholesale. This full-replace surface is how clients reorder, bulk-edit or
// delete conversations, since no dedicated endpoints exist for that.
type UserPatch struct {
	Contacts      *[]models.Contact      `json:"contacts"`
	Groups        *[]models.Conversation `json:"groups"`
	Conversations *[]models.Conversation `json:"conversations"`
}

func (s *ChatService) UpdateUser(userEmail string, patch UserPatch) error {
	users, err := s.store.LoadAll()
	if err != nil {
		return err
	}
	i := models.FindUser(users, userEmail)
	if i == -1 {
		return ErrUserNotFound
	}

	if patch.Contacts != nil {
		users[i].Contacts = *patch.Contacts
	}
	if patch.Groups != nil {
		users[i].Groups = *patch.Groups
	}
	if patch.Conversations != nil {
		users[i].Conversations = *patch.Conversations
	}
	return s.store.SaveAll(users)
}

// CreateChat replicates a new 1:1 conversation into both participants'
// records in one store write. The initiator's copy carries the display name
// they chose; the counterpart's copy is named with the initiator's email.
func (s *ChatService) CreateChat(initiator, displayName, counterpart string) (models.Conversation, error) {
	users, err := s.store.LoadAll()
	if err != nil {
		return models.Conversation{}, err
	}

	ui := models.FindUser(users, initiator)
	if ui == -1 {
		return models.Conversation{}, ErrUserNotFound
	}
	ci := models.FindUser(users, counterpart)
	if ci == -1 {
		return models.Conversation{}, ErrContactNotFound
	}
	if users[ui].HasConversationWith(counterpart) {
		return models.Conversation{}, ErrDuplicateChat
	}

	chat := replicateDirectChat(users, ui, ci, displayName)
	if err := s.store.SaveAll(users); err != nil {
		return models.Conversation{}, err
	}
	return chat, nil
}

// AddContactByEmail runs the contact-add flow: both parties get a contact
// entry and a 1:1 conversation copy. The adder picks the label they will see
// for the contact; the added party sees the adder's email on both their
// contact entry and their conversation copy. The asymmetry is deliberate.
func (s *ChatService) AddContactByEmail(adder, contactEmail, contactName string) (models.Conversation, error) {
	if adder == contactEmail {
		return models.Conversation{}, ErrSelfContact
	}

	users, err := s.store.LoadAll()
	if err != nil {
		return models.Conversation{}, err
	}

	ai := models.FindUser(users, adder)
	if ai == -1 {
		return models.Conversation{}, ErrUserNotFound
	}
	ci := models.FindUser(users, contactEmail)
	if ci == -1 {
		return models.Conversation{}, ErrContactNotFound
	}
	if users[ai].HasConversationWith(contactEmail) {
		return models.Conversation{}, ErrDuplicateChat
	}

	addContact(&users[ai], models.Contact{Name: contactName, Email: contactEmail})
	addContact(&users[ci], models.Contact{Name: adder, Email: adder})

	chat := replicateDirectChat(users, ai, ci, contactName)
	if err := s.store.SaveAll(users); err != nil {
		return models.Conversation{}, err
	}
	return chat, nil
}

// CreateGroup adds a group conversation copy to the initiator and to every
// listed member that has an account and does not already hold the id (the
// initiator may list themselves). Members without an account are skipped
// silently; their absence is an accepted gap, not an error.
func (s *ChatService) CreateGroup(initiator, name string, members []string, endDate string) (models.Conversation, error) {
	users, err := s.store.LoadAll()
	if err != nil {
		return models.Conversation{}, err
	}

	ui := models.FindUser(users, initiator)
	if ui == -1 {
		return models.Conversation{}, ErrUserNotFound
	}

	group := models.Conversation{
		ID:           newConversationID(users, "group"),
		Name:         name,
		Members:      members,
		Participants: participantSet(initiator, members),
		EndDate:      endDate,
		LastMessage:  "",
		Time:         time.Now().Format(timeLayout),
		IsGroup:      true,
		Timer:        "N/A",
		Messages:     []models.Message{},
	}

	users[ui].Conversations = append(users[ui].Conversations, copyConversation(group))
	skipped := 0
	for _, member := range members {
		mi := models.FindUser(users, member)
		if mi == -1 {
			skipped++
			continue
		}
		if hasConversationID(&users[mi], group.ID) {
			continue
		}
		users[mi].Conversations = append(users[mi].Conversations, copyConversation(group))
	}
	if skipped > 0 {
		s.log.WithFields(logrus.Fields{
			"group":   group.ID,
			"skipped": skipped,
		}).Info("group members without an account were skipped")
	}

	if err := s.store.SaveAll(users); err != nil {
		return models.Conversation{}, err
	}
	return group, nil
}

// SendMessage appends one fresh message to every record holding a copy of
// the conversation, updates each copy's preview fields identically and saves
// the collection exactly once. A send that reaches fewer copies than the
// conversation has participants with accounts still succeeds (best-effort
// fan-out); the gap is logged. It returns the message and the participant
// list of the conversation for realtime delivery.
func (s *ChatService) SendMessage(conversationID, sender, content string) (models.Message, []string, error) {
	users, err := s.store.LoadAll()
	if err != nil {
		return models.Message{}, nil, err
	}

	now := time.Now()
	msg := models.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      content,
		Timestamp: now.Format(time.RFC3339),
	}

	updated := 0
	var participants []string
	for i := range users {
		for j := range users[i].Conversations {
			c := &users[i].Conversations[j]
			if c.ID != conversationID {
				continue
			}
			c.Messages = append(c.Messages, msg)
			c.LastMessage = msg.Text
			c.Time = now.Format(timeLayout)
			updated++
			if participants == nil {
				participants = c.Participants
			}
		}
	}
	if updated == 0 {
		return models.Message{}, nil, ErrConversationNotFound
	}

	expected := 0
	for _, p := range participants {
		if models.FindUser(users, p) != -1 {
			expected++
		}
	}
	if updated < expected {
		s.log.WithFields(logrus.Fields{
			"conversation": conversationID,
			"copies":       updated,
			"expected":     expected,
		}).Warn("message fan-out reached fewer copies than expected")
	}

	if err := s.store.SaveAll(users); err != nil {
		return models.Message{}, nil, err
	}
	return msg, participants, nil
}

// replicateDirectChat appends one copy of a new 1:1 conversation to each of
// the two user records and returns the initiator's copy. Both copies share
// the id and participant set; name and identifier are personalized per owner.
func replicateDirectChat(users []models.User, ui, ci int, displayName string) models.Conversation {
	chat := models.Conversation{
		ID:           newConversationID(users, "chat"),
		Name:         displayName,
		Identifier:   users[ci].Email,
		Participants: []string{users[ui].Email, users[ci].Email},
		LastMessage:  "",
		Time:         time.Now().Format(timeLayout),
		Messages:     []models.Message{},
	}

	forCounterpart := copyConversation(chat)
	forCounterpart.Name = users[ui].Email
	forCounterpart.Identifier = users[ui].Email

	users[ui].Conversations = append(users[ui].Conversations, copyConversation(chat))
	users[ci].Conversations = append(users[ci].Conversations, forCounterpart)
	return chat
}

// newConversationID generates a store-wide unique id: a millisecond
// timestamp plus a random suffix, regenerated on the off chance of a
// collision with an existing conversation. Callers treat it as opaque.
func newConversationID(users []models.User, kind string) string {
	for {
		id := fmt.Sprintf("%s_%d_%s", kind, time.Now().UnixMilli(), uuid.NewString()[:8])
		if !conversationIDExists(users, id) {
			return id
		}
	}
}

func conversationIDExists(users []models.User, id string) bool {
	for i := range users {
		if hasConversationID(&users[i], id) {
			return true
		}
	}
	return false
}

func hasConversationID(u *models.User, id string) bool {
	for i := range u.Conversations {
		if u.Conversations[i].ID == id {
			return true
		}
	}
	return false
}

func addContact(u *models.User, contact models.Contact) {
	for _, c := range u.Contacts {
		if c.Email == contact.Email {
			return
		}
	}
	u.Contacts = append(u.Contacts, contact)
}

// copyConversation clones a conversation so copies held by different records
// never share backing slices.
func copyConversation(c models.Conversation) models.Conversation {
	c.Participants = append([]string(nil), c.Participants...)
	c.Members = append([]string(nil), c.Members...)
	c.Messages = append([]models.Message{}, c.Messages...)
	return c
}

func participantSet(initiator string, members []string) []string {
	seen := map[string]bool{initiator: true}
	participants := []string{initiator}
	for _, m := range members {
		if seen[m] {
			continue
		}
		seen[m] = true
		participants = append(participants, m)
	}
	return participants
}
