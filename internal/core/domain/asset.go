package domain

// Asset - физический объект (квартира, комната) во внешней системе
type Asset struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Alias   string `json:"alias,omitempty"`
}

// DisplayName - алиас, если он задан, иначе адрес
func (a Asset) DisplayName() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.Address
}
