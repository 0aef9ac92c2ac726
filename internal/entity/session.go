package entity

// Session is the per-connection handle assigned by the transport. RoomID is
// the reverse index from connection to room, kept consistent on every
// join and leave so the disconnect path never scans the room table.
type Session struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	RoomID string `json:"room_id,omitempty"`
}

func (that *Session) InRoom() bool {
	return that.RoomID != ""
}
