package model

import "time"

// Gender 商品适用性别
type Gender string

const (
	GenderMen   Gender = "Men"
	GenderWomen Gender = "Women"
)

// Valid 是否为合法性别
func (g Gender) Valid() bool {
	return g == GenderMen || g == GenderWomen
}

// MaxItemImages 每个商品最多的图片数
const MaxItemImages = 5

// Item 商品
type Item struct {
	ID          string    `json:"_id" bson:"_id" db:"id"`
	ItemName    string    `json:"ItemName" bson:"ItemName" db:"item_name"`
	ItemPrice   float64   `json:"ItemPrice" bson:"ItemPrice" db:"item_price"`
	Gender      Gender    `json:"Gender" bson:"Gender" db:"gender"`
	Material    string    `json:"Material" bson:"Material" db:"material"`
	Subcategory string    `json:"Subcategory" bson:"Subcategory" db:"subcategory"`
	Url1        string    `json:"Url1,omitempty" bson:"Url1,omitempty" db:"url1"`
	Url2        string    `json:"Url2,omitempty" bson:"Url2,omitempty" db:"url2"`
	Url3        string    `json:"Url3,omitempty" bson:"Url3,omitempty" db:"url3"`
	Url4        string    `json:"Url4,omitempty" bson:"Url4,omitempty" db:"url4"`
	Url5        string    `json:"Url5,omitempty" bson:"Url5,omitempty" db:"url5"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// ItemUpdate 可编辑的商品字段
type ItemUpdate struct {
	ItemName    string  `json:"ItemName"`
	ItemPrice   float64 `json:"ItemPrice"`
	Gender      Gender  `json:"Gender"`
	Material    string  `json:"Material"`
	Subcategory string  `json:"Subcategory"`
}

// ImageField 返回图片槽位（1..5）对应的字段名，如 "Url3"
func ImageField(slot int) (string, bool) {
	if slot < 1 || slot > MaxItemImages {
		return "", false
	}
	return "Url" + string(rune('0'+slot)), true
}

// SetImage 设置指定槽位的图片地址
func (i *Item) SetImage(slot int, url string) bool {
	switch slot {
	case 1:
		i.Url1 = url
	case 2:
		i.Url2 = url
	case 3:
		i.Url3 = url
	case 4:
		i.Url4 = url
	case 5:
		i.Url5 = url
	default:
		return false
	}
	return true
}
