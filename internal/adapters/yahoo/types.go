package yahoo

// DTOs raw de la API de quotes. Solo se usan dentro de este paquete;
// la conversión a domain entities se hace en mapping.go.

// chartResponse es la respuesta de GET /v8/finance/chart/{symbol}.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

// chartResult contiene la metadata del último precio.
type chartResult struct {
	Meta struct {
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		Symbol             string  `json:"symbol"`
	} `json:"meta"`
}

// optionsResponse es la respuesta de GET /v7/finance/options/{symbol}.
type optionsResponse struct {
	OptionChain struct {
		Result []optionChainResult `json:"result"`
		Error  *apiError           `json:"error"`
	} `json:"optionChain"`
}

// optionChainResult lista los expiries disponibles y las cadenas pedidas.
type optionChainResult struct {
	ExpirationDates []int64            `json:"expirationDates"` // epoch seconds
	Options         []optionChainSlice `json:"options"`
}

// optionChainSlice es la cadena (calls y puts) de un expiry concreto.
type optionChainSlice struct {
	ExpirationDate int64            `json:"expirationDate"`
	Calls          []optionContract `json:"calls"`
	Puts           []optionContract `json:"puts"`
}

// optionContract es un contrato individual de la cadena.
type optionContract struct {
	Strike            float64 `json:"strike"`
	OpenInterest      float64 `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

// apiError es el error estructurado que devuelve la API.
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
