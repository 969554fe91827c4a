package broadcast

import (
	"encoding/json"
	"log/slog"
)

// Event families carried on the shared channel.
type EventType string

const (
	EventRecipeUpdate   EventType = "recipe_update"
	EventUserUpdate     EventType = "user_update"
	EventHomepageUpdate EventType = "homepage_update"
)

// Action tags within an event family.
type Action string

const (
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionRate            Action = "rate"
	ActionApprove         Action = "approve"
	ActionDecline         Action = "decline"
	ActionSignatureToggle Action = "signature_toggle"
	ActionPhotoUpdate     Action = "photo_update"

	ActionRegister         Action = "register"
	ActionProfileUpdate    Action = "profile_update"
	ActionRoleUpdate       Action = "role_update"
	ActionCreateTeamMember Action = "create_team_member"
	ActionDeleteUser       Action = "delete_user"

	ActionHomepageUpdate Action = "homepage_update"
)

// Event is the wire envelope sent to every subscriber:
// {"type": ..., "data": {"action": ..., "<entity>": <committed state>}}.
// For deletions the entity is the last serialized state before removal.
type Event struct {
	Type EventType      `json:"type"`
	Data map[string]any `json:"data"`
}

func NewRecipeEvent(action Action, recipe any) *Event {
	return &Event{
		Type: EventRecipeUpdate,
		Data: map[string]any{"action": action, "recipe": recipe},
	}
}

func NewUserEvent(action Action, user any) *Event {
	return &Event{
		Type: EventUserUpdate,
		Data: map[string]any{"action": action, "user": user},
	}
}

func NewHomepageEvent(content any) *Event {
	return &Event{
		Type: EventHomepageUpdate,
		Data: map[string]any{"action": ActionHomepageUpdate, "content": content},
	}
}

// ToJSON marshals the event for the wire.
func (e *Event) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to marshal event to JSON", "error", err, "type", e.Type)
		return nil, err
	}
	return data, nil
}
