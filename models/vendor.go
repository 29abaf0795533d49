package models

import "time"

type Vendor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Fraudulent bool      `json:"fraudulent"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
}
