package edict

import "time"

// Active is one edict currently applied to a player.
type Active struct {
	ID          int64
	UserID      int64
	Key         string
	ActivatedAt time.Time
	// ExpiresAt is nil for edicts that last until revoked.
	ExpiresAt *time.Time
}

// LiveAt reports whether the edict is still in force at now.
func (a Active) LiveAt(now time.Time) bool {
	return a.ExpiresAt == nil || now.Before(*a.ExpiresAt)
}

// Sum returns the sum of effect key across every active edict with a known
// definition. Unknown edicts and missing effects contribute zero.
func Sum(reg *Registry, active []Active, key string) float64 {
	var total float64
	for _, a := range active {
		def, ok := reg.Get(a.Key)
		if !ok {
			continue
		}
		total += def.Effects[key]
	}
	return total
}

// Product returns the product of effect key across every active edict that
// defines it. Returns 1 when no edict defines the effect.
func Product(reg *Registry, active []Active, key string) float64 {
	product := 1.0
	for _, a := range active {
		def, ok := reg.Get(a.Key)
		if !ok {
			continue
		}
		if v, ok := def.Effects[key]; ok {
			product *= v
		}
	}
	return product
}

// Has reports whether any active edict carries a non-zero value for flag key.
func Has(reg *Registry, active []Active, key string) bool {
	for _, a := range active {
		def, ok := reg.Get(a.Key)
		if !ok {
			continue
		}
		if def.Effects[key] != 0 {
			return true
		}
	}
	return false
}
