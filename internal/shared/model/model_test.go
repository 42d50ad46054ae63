// Package model 定义核心数据模型的测试
package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRole_Valid(t *testing.T) {
	assert.True(t, UserRoleUser.Valid())
	assert.True(t, UserRoleAdmin.Valid())
	assert.False(t, UserRole("admin").Valid())
	assert.False(t, UserRole("").Valid())
}

func TestGender_Valid(t *testing.T) {
	assert.True(t, GenderMen.Valid())
	assert.True(t, GenderWomen.Valid())
	assert.False(t, Gender("Kids").Valid())
}

func TestSize_Valid(t *testing.T) {
	for _, s := range []Size{SizeS, SizeM, SizeL, SizeXL, SizeXXL} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Size("XS").Valid())
	assert.False(t, Size("m").Valid())
}

// TestUser_PasswordNotSerialized 密码哈希不能出现在 JSON 中
func TestUser_PasswordNotSerialized(t *testing.T) {
	u := User{ID: NewID(), UserName: "alice", PasswordHash: "$2a$secret", Role: UserRoleUser}
	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), `"userName":"alice"`)
	assert.Contains(t, string(data), `"_id":"`+u.ID+`"`)
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 24)
	assert.True(t, IsValidID(id))
	assert.NotEqual(t, id, NewID())

	assert.False(t, IsValidID("not-an-id"))
	assert.False(t, IsValidID(""))
}

func TestImageField(t *testing.T) {
	f, ok := ImageField(1)
	assert.True(t, ok)
	assert.Equal(t, "Url1", f)

	f, ok = ImageField(5)
	assert.True(t, ok)
	assert.Equal(t, "Url5", f)

	_, ok = ImageField(0)
	assert.False(t, ok)
	_, ok = ImageField(6)
	assert.False(t, ok)
}

func TestItem_SetImage(t *testing.T) {
	var it Item
	assert.True(t, it.SetImage(3, "http://img/3.png"))
	assert.Equal(t, "http://img/3.png", it.Url3)
	assert.False(t, it.SetImage(9, "x"))
}

func TestNewPaymentDetail(t *testing.T) {
	p := &Payment{Price: 300, Quantity: "3", Size: SizeL}

	t.Run("关联完整", func(t *testing.T) {
		d := NewPaymentDetail(p,
			&User{UserName: "bob", PostalCode: "10100", Address: "Main st"},
			&Item{ItemName: "Shirt", ItemPrice: 100})
		assert.Equal(t, "bob", d.UserName)
		assert.Equal(t, "Shirt", d.ItemName)
		assert.Equal(t, 100.0, d.ItemPrice)
		assert.Equal(t, 300.0, d.TotalPrice)
		assert.Equal(t, "10100", d.PostalCode)
	})

	t.Run("关联缺失", func(t *testing.T) {
		d := NewPaymentDetail(p, nil, nil)
		assert.Equal(t, NotAvailable, d.UserName)
		assert.Equal(t, NotAvailable, d.ItemName)
		assert.Equal(t, NotAvailable, d.Address)
		assert.Equal(t, 0.0, d.ItemPrice)
		assert.Equal(t, "3", d.Quantity)
	})
}
