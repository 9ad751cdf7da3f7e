package model

import "time"

// Encoding identifies the barcode symbology rendered for a card.
type Encoding string

const (
	EncodingCode128 Encoding = "code128"
	EncodingCode39  Encoding = "code39"
	EncodingUPCA    Encoding = "upc-a"
	EncodingUPCE    Encoding = "upc-e"
	EncodingEAN13   Encoding = "ean-13"
	EncodingEAN8    Encoding = "ean-8"
	EncodingQR      Encoding = "qr"
)

// Encodings lists every supported barcode symbology.
var Encodings = []Encoding{
	EncodingCode128,
	EncodingCode39,
	EncodingUPCA,
	EncodingUPCE,
	EncodingEAN13,
	EncodingEAN8,
	EncodingQR,
}

// Valid reports whether e is a supported symbology.
func (e Encoding) Valid() bool {
	for _, known := range Encodings {
		if e == known {
			return true
		}
	}
	return false
}

// Card is a loyalty card record. A card has no direct owner column; ownership
// is carried by the UserCard association rows. At least one of CardNumber and
// BarcodeNumber must be present, enforced at the service boundary.
type Card struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:30;not null"`
	ShopID        uint      `json:"shop_id" gorm:"not null;index"`
	Image         string    `json:"image,omitempty" gorm:"size:255"`
	CardNumber    string    `json:"card_number,omitempty" gorm:"size:40"`
	BarcodeNumber string    `json:"barcode_number,omitempty" gorm:"size:256"`
	Encoding      Encoding  `json:"encoding_type" gorm:"type:varchar(20);not null;default:'ean-13'"`
	PubDate       time.Time `json:"pub_date" gorm:"autoCreateTime"`

	// Relations
	Shop Shop `json:"shop" gorm:"foreignKey:ShopID"`
}

// HasIdentifier reports whether the card carries a card number or a barcode
// number. Cards without either cannot be rendered and are rejected.
func (c *Card) HasIdentifier() bool {
	return c.CardNumber != "" || c.BarcodeNumber != ""
}
