// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Mail check flags.
const (
	MailCheckedRead     uint32 = 0x01
	MailCheckedReturned uint32 = 0x02
)

// Mail is a mail header in the character's mailbox.
type Mail struct {
	entity.Tracked
	Sender    int64
	Subject   string
	Money     uint64
	Delivered time.Time
	Expires   time.Time
	Checked   uint32
}

// Read reports whether the mail was opened.
func (m *Mail) Read() bool { return m.Checked&MailCheckedRead != 0 }

// Mailbox holds mail headers. Mail is written by other characters and the
// server; the owner only marks it read or deletes it.
type Mailbox struct {
	items *entity.Collection[int64, *Mail]
}

func newMailbox() *Mailbox {
	return &Mailbox{items: entity.NewCollection[int64, *Mail]()}
}

// load restores mail that has not expired by now.
func (m *Mailbox) load(rows []store.MailRow, now time.Time) {
	for _, row := range rows {
		expires := unixOrZero(row.ExpireTime)
		if !expires.IsZero() && !expires.After(now) {
			continue
		}
		m.items.Load(row.ID, &Mail{
			Sender:    row.Sender,
			Subject:   row.Subject,
			Money:     uint64(row.Money),
			Delivered: unixOrZero(row.DeliverTime),
			Expires:   expires,
			Checked:   uint32(row.Checked),
		})
	}
}

// Get returns a mail by id.
func (m *Mailbox) Get(id int64) (*Mail, bool) { return m.items.Get(id) }

// Unread returns the number of delivered mails not yet opened.
func (m *Mailbox) Unread(now time.Time) int {
	n := 0
	m.items.Each(func(_ int64, mail *Mail) bool {
		if !mail.Read() && !mail.Delivered.After(now) {
			n++
		}
		return true
	})
	return n
}

// MarkRead flags a mail as opened.
func (m *Mailbox) MarkRead(id int64) bool {
	mail, ok := m.items.Get(id)
	if !ok {
		return false
	}
	if !mail.Read() {
		mail.Checked |= MailCheckedRead
		mail.MarkChanged()
	}
	return true
}

// Delete removes a mail.
func (m *Mailbox) Delete(id int64) bool { return m.items.Remove(id, entity.Deleted) }

// Len returns the number of mails.
func (m *Mailbox) Len() int { return m.items.Len() }

// Dirty returns the number of mails needing a statement.
func (m *Mailbox) Dirty() int { return m.items.Dirty() }

func (m *Mailbox) emit(tx *store.Transaction) {
	m.items.Flush(func(id int64, mail *Mail) {
		if mail.State() == entity.Changed {
			tx.Append(store.CharUpdMailChecked, id, int32(mail.Checked))
			return
		}
		tx.Append(store.CharDelMail, id)
	})
}

func (m *Mailbox) committed() { m.items.Commit() }
