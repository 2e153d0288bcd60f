package dto

type LoginDTO struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ExpiresIn   int64    `json:"expiresIn"`
	User        ActorDTO `json:"user"`
}

// ActorDTO - текущий пользователь и его компания, если она есть.
type ActorDTO struct {
	ID          uint64      `json:"id"`
	Username    string      `json:"username"`
	IsSuperuser bool        `json:"is_superuser"`
	Role        string      `json:"role"`
	Company     *CompanyDTO `json:"company,omitempty"`
}
