package model

type Room struct {
	ID          int64  `json:"id" bson:"_id"`
	Number      string `json:"number" bson:"number"`
	Capacity    int    `json:"capacity" bson:"capacity"`
	TimesBooked int64  `json:"timesBooked" bson:"times_booked"`
	Available   bool   `json:"available" bson:"available"`
}

// RoomView is the public listing shape used for suggestions.
type RoomView struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	TimesBooked int64  `json:"timesBooked"`
}

func (r *Room) View() RoomView {
	return RoomView{ID: r.ID, Number: r.Number, TimesBooked: r.TimesBooked}
}
