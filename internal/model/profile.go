package model

// Profile 用户身份与个性化信息，可选字段用指针表示“后端未返回”
type Profile struct {
	ID                int     `json:"id"`
	Email             string  `json:"email"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Age               *int    `json:"age,omitempty"`
	Level             *string `json:"level,omitempty"`
	Background        *string `json:"background,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`
	Country           *string `json:"country,omitempty"`
	Interests         *string `json:"interests,omitempty"`
}

// PlaceholderProfile 资料无法加载时使用的最小用户
func PlaceholderProfile() *Profile {
	return &Profile{ID: 0, FirstName: "User", LastName: "", Email: ""}
}

// IsComplete age、level、background 都存在时资料才算完整
func (p *Profile) IsComplete() bool {
	if p == nil {
		return false
	}
	return p.Age != nil && *p.Age > 0 &&
		p.Level != nil && *p.Level != "" &&
		p.Background != nil && *p.Background != ""
}

// ProfileUpdate PUT /profile 的请求体，未设置的字段不发送
type ProfileUpdate struct {
	Age               *int    `json:"age,omitempty"`
	Level             *string `json:"level,omitempty"`
	Background        *string `json:"background,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`
	Interests         *string `json:"interests,omitempty"`
	Country           *string `json:"country,omitempty"`
}
