package slack

// Text is a Slack text object, either plain_text or mrkdwn.
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Button is a button accessory of a section block.
type Button struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text"`
	Value    string `json:"value,omitempty"`
	URL      string `json:"url,omitempty"`
	ActionID string `json:"action_id,omitempty"`
}

// Block is a layout unit of a Slack message. Only the block types used by the
// notifier are modeled: header, divider and section with an optional button
// accessory.
type Block struct {
	Type      string  `json:"type"`
	Text      *Text   `json:"text,omitempty"`
	Accessory *Button `json:"accessory,omitempty"`
}

// NewHeaderBlock creates a header block with plain text.
func NewHeaderBlock(text string) Block {
	return Block{
		Type: "header",
		Text: &Text{
			Type:  "plain_text",
			Text:  text,
			Emoji: true,
		},
	}
}

// NewDividerBlock creates a divider block.
func NewDividerBlock() Block {
	return Block{Type: "divider"}
}

// NewSectionBlock creates a section block with markdown text and an optional
// button accessory.
func NewSectionBlock(markdown string, accessory *Button) Block {
	return Block{
		Type: "section",
		Text: &Text{
			Type: "mrkdwn",
			Text: markdown,
		},
		Accessory: accessory,
	}
}

// NewButton creates a button accessory with plain text.
func NewButton(label, value, url, actionID string) *Button {
	return &Button{
		Type: "button",
		Text: &Text{
			Type:  "plain_text",
			Text:  label,
			Emoji: true,
		},
		Value:    value,
		URL:      url,
		ActionID: actionID,
	}
}
