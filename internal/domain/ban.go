package domain

import "time"

// BanStatus is the account state derived from BannedUntil.
type BanStatus string

const (
	BanActive    BanStatus = "active"
	BanTemporary BanStatus = "banned_temporarily"
	BanPermanent BanStatus = "banned_permanently"
)

// PermanentBanUntil is the far-future marker the auth platform understands as a permanent block.
var PermanentBanUntil = time.Date(2099, time.December, 31, 23, 59, 59, 0, time.UTC)

// BanStatus reports the ban state of u at now.
func (u *User) BanStatus(now time.Time) BanStatus {
	if u.BannedUntil == nil || !u.BannedUntil.After(now) {
		return BanActive
	}
	if !u.BannedUntil.Before(PermanentBanUntil) {
		return BanPermanent
	}
	return BanTemporary
}

// IsBlocked reports whether u is banned at now.
func (u *User) IsBlocked(now time.Time) bool {
	return u.BanStatus(now) != BanActive
}
