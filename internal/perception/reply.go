package perception

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mtgcollections/internal/types"
)

// cardsReply mirrors the reply shape the model is told to produce.
// Pointer fields let the validator tell "missing" apart from "zero value".
type cardsReply struct {
	Cards *[]json.RawMessage `json:"cards"`
}

type cardEntry struct {
	Name     *string `json:"name"`
	Language *string `json:"language"`
}

// DecodeCards sanitizes a raw model reply and structurally validates it
// against the {cards: [{name, language}]} shape. Any mismatch is reported
// as a *types.MalformedResponseError.
func DecodeCards(raw string) (types.Collection, error) {
	payload, err := ExtractJSONFunc(raw, hasCardsArray)
	if errors.Is(err, ErrMissingJSON) {
		// No candidate has the expected shape; validate the first JSON
		// value instead so the error says what is wrong with it.
		payload, err = ExtractJSON(raw)
	}
	if err != nil {
		return types.Collection{}, malformed("sanitize reply", err)
	}

	var reply cardsReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return types.Collection{}, malformed("reply is not a JSON object", err)
	}
	if reply.Cards == nil {
		return types.Collection{}, malformed(`reply has no "cards" array`, nil)
	}

	out := types.NewCollection()
	for i, rawEntry := range *reply.Cards {
		var entry cardEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			return types.Collection{}, malformed(fmt.Sprintf("cards[%d] is not an object", i), err)
		}
		if entry.Name == nil || strings.TrimSpace(*entry.Name) == "" {
			return types.Collection{}, malformed(fmt.Sprintf("cards[%d].name is missing or empty", i), nil)
		}
		if entry.Language == nil {
			return types.Collection{}, malformed(fmt.Sprintf("cards[%d].language is missing", i), nil)
		}
		lang, err := types.ParseLanguage(*entry.Language)
		if err != nil {
			return types.Collection{}, malformed(fmt.Sprintf("cards[%d].language", i), err)
		}
		out.Append(types.Card{Name: strings.TrimSpace(*entry.Name), Language: lang})
	}

	return out, nil
}

// hasCardsArray reports whether candidate is an object whose "cards" field
// is an array.
func hasCardsArray(candidate []byte) bool {
	var reply cardsReply
	return json.Unmarshal(candidate, &reply) == nil && reply.Cards != nil
}

func malformed(detail string, err error) error {
	return &types.MalformedResponseError{Service: types.ServiceVision, Detail: detail, Err: err}
}
