package models

import "time"

type Membership string

const (
	MembershipBronze Membership = "B"
	MembershipSilver Membership = "S"
	MembershipGold   Membership = "G"
)

var membershipLabels = map[Membership]string{
	MembershipBronze: "Bronze",
	MembershipSilver: "Silver",
	MembershipGold:   "Gold",
}

func (m Membership) Valid() bool {
	_, ok := membershipLabels[m]
	return ok
}

func (m Membership) Label() string {
	return membershipLabels[m]
}

type Customer struct {
	ID         int64      `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	BirthDate  *time.Time `json:"birth_date"`
	Membership Membership `json:"membership"`
}

type Address struct {
	ID         int64  `json:"id"`
	Street     string `json:"street"`
	City       string `json:"city"`
	CustomerID int64  `json:"customer"`
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
