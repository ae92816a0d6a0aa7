package models

// Wire format note: field names follow the JSON shape the frontend already
// speaks (name, identifier, lastMessage, time), not Go-preferred naming.

type User struct {
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Contacts []Contact `json:"contacts"`
	// Groups is a legacy field kept for the PUT /user surface. Group
	// conversations created through the API live in Conversations.
	Groups        []Conversation `json:"groups"`
	Conversations []Conversation `json:"conversations"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Conversation is a value embedded in each participant's User record. Every
// participant holds their own copy sharing the same ID; only Name may differ
// between copies of a 1:1 chat.
type Conversation struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Identifier   string    `json:"identifier,omitempty"`
	Participants []string  `json:"participants,omitempty"`
	Members      []string  `json:"members,omitempty"`
	EndDate      string    `json:"endDate,omitempty"`
	LastMessage  string    `json:"lastMessage"`
	Time         string    `json:"time"`
	IsGroup      bool      `json:"isGroup"`
	IsPriority   bool      `json:"isPriority"`
	Timer        string    `json:"timer,omitempty"`
	Messages     []Message `json:"messages"`
}

type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Sanitized returns a copy of the user safe to hand to API clients. The
// password field carries omitempty, so clearing it drops it from responses.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// HasConversationWith reports whether the user already holds a 1:1
// conversation with the given counterpart. Legacy records may lack
// participants and carry only the bare identifier field, so both are checked.
func (u *User) HasConversationWith(counterpart string) bool {
	for i := range u.Conversations {
		c := &u.Conversations[i]
		if c.IsGroup {
			continue
		}
		if c.Identifier == counterpart {
			return true
		}
		for _, p := range c.Participants {
			if p == counterpart {
				return true
			}
		}
	}
	return false
}

// NormalizeUsers upgrades records read from the store in place: nil slices
// become empty so they serialize as [] rather than null, and legacy 1:1
// conversations that predate the participants field get it derived from the
// owner and the identifier.
func NormalizeUsers(users []User) {
	for i := range users {
		u := &users[i]
		if u.Contacts == nil {
			u.Contacts = []Contact{}
		}
		if u.Groups == nil {
			u.Groups = []Conversation{}
		}
		if u.Conversations == nil {
			u.Conversations = []Conversation{}
		}
		for j := range u.Conversations {
			c := &u.Conversations[j]
			if c.Messages == nil {
				c.Messages = []Message{}
			}
			if !c.IsGroup && len(c.Participants) == 0 && c.Identifier != "" {
				c.Participants = []string{u.Email, c.Identifier}
			}
		}
	}
}

// FindUser returns the index of the user with the given email, or -1.
// Emails are matched case-sensitively.
func FindUser(users []User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}
