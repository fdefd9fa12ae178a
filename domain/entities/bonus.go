package entities

// BonusKind identifies why credits were awarded
type BonusKind string

const (
	BonusKindVote     BonusKind = "vote"
	BonusKindPurchase BonusKind = "purchase"
)

// IsValid reports whether the kind is a known bonus source
func (k BonusKind) IsValid() bool {
	return k == BonusKindVote || k == BonusKindPurchase
}

// StampsVote reports whether awarding this kind records the vote time
func (k BonusKind) StampsVote() bool {
	return k == BonusKindVote
}

// BonusOutcome describes what an intake handler did with a delivery
type BonusOutcome struct {
	Awarded bool      `json:"awarded"`
	Kind    BonusKind `json:"kind,omitempty"`
	UserID  int64     `json:"userId,string,omitempty"`
	Amount  int64     `json:"amount,omitempty"`
	Reason  string    `json:"reason,omitempty"` // set when the delivery was acknowledged without awarding
	User    *User     `json:"user,omitempty"`
}

// Vote delivery types sent by top.gg
const (
	VoteTypeUpvote = "upvote"
	VoteTypeTest   = "test"
)

// PurchaseTypeOrderPaid is the only storefront event that grants credits
const PurchaseTypeOrderPaid = "order.paid"

// VotePayload is the body top.gg posts for a vote
type VotePayload struct {
	Bot       string `json:"bot"`
	User      string `json:"user"`
	Type      string `json:"type"`
	Guild     string `json:"guild,omitempty"`
	IsWeekend bool   `json:"isWeekend"`
	Query     string `json:"query,omitempty"`
}

// PurchasePayload is the body the storefront posts for an order event
type PurchasePayload struct {
	ID   string              `json:"id,omitempty"`
	Type string              `json:"type"`
	Data PurchasePayloadData `json:"data"`
}

// PurchasePayloadData carries the order details of a purchase delivery
type PurchasePayloadData struct {
	ProductID string            `json:"product_id"`
	Metadata  map[string]string `json:"metadata"`
}

// DiscordUserID returns the buyer's Discord ID from the order metadata
func (d PurchasePayloadData) DiscordUserID() string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata["discord_user_id"]
}
