package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case Room:
		o.printRoom(v)
	case GeneratedCode:
		o.printGeneratedCode(v)
	case MessagesPage:
		o.printMessagesPage(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	BirthDate   *string  `json:"birth_date,omitempty"`
	Rooms       []string `json:"rooms"`
	CurrentRoom *string  `json:"current_room"`
}

// AuthResult combines user and token
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// RoomMember response type
type RoomMember struct {
	UserID   string    `json:"user_id"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// Room response type
type Room struct {
	Code        string       `json:"room_code"`
	HasPassword bool         `json:"has_password"`
	Members     []RoomMember `json:"members"`
	CreatedAt   time.Time    `json:"created_at"`
}

// GeneratedCode response type
type GeneratedCode struct {
	RoomCode string `json:"room_code"`
}

// ChatMessage response type
type ChatMessage struct {
	ID        string  `json:"id"`
	Body      string  `json:"message"`
	SenderID  string  `json:"sender_id"`
	Username  string  `json:"username"`
	BirthDate *string `json:"birth_date,omitempty"`
	Age       *int    `json:"age,omitempty"`
	Color     string  `json:"color"`
	Timestamp string  `json:"timestamp"`
}

// MessagesPage response type
type MessagesPage struct {
	Messages    []ChatMessage `json:"messages"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
	HasMore     bool          `json:"has_more"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
	if u.BirthDate != nil {
		fmt.Printf("Birth Date: %s\n", *u.BirthDate)
	}
	if u.CurrentRoom != nil {
		fmt.Printf("Current Room: %s\n", *u.CurrentRoom)
	}
	if len(u.Rooms) > 0 {
		fmt.Printf("Rooms (%d):\n", len(u.Rooms))
		for _, code := range u.Rooms {
			fmt.Printf("  - %s\n", code)
		}
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.Token)
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	protectedStr := "no"
	if r.HasPassword {
		protectedStr = "yes"
	}
	fmt.Printf("Password protected: %s\n", protectedStr)
	fmt.Printf("Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		fmt.Printf("  - %s (%s)\n", m.UserID, m.Color)
	}
}

func (o *Output) printGeneratedCode(g GeneratedCode) {
	fmt.Println(g.RoomCode)
}

func (o *Output) printMessagesPage(p MessagesPage) {
	fmt.Printf("Page %d of %d\n", p.CurrentPage, p.TotalPages)
	for _, m := range p.Messages {
		fmt.Printf("[%s] %s: %s\n", m.Timestamp, m.Username, m.Body)
	}
	if p.HasMore {
		fmt.Println("(older messages available)")
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
