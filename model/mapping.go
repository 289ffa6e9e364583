package model

import "time"

// ContactMapping links a paperless correspondent to a lexoffice contact.
// A mapping row is the sole source of truth that the two records represent
// the same party. At most one row may exist per external id on either side.
type ContactMapping struct {
	Id              string    `json:"id"`
	CorrespondentId string    `json:"correspondentId"`
	ContactId       string    `json:"contactId"`
	LastSynced      time.Time `json:"lastSynced"`
}
