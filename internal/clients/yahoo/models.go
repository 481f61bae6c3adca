package yahoo

// Yahoo wraps most numeric fields in a {raw, fmt} object. Only the raw value
// is used; a missing field decodes to a nil Raw and surfaces as "N/A"
// downstream.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *apiError            `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteSummaryResult struct {
	Price                *priceModule         `json:"price"`
	SummaryDetail        *summaryDetailModule `json:"summaryDetail"`
	FinancialData        *financialDataModule `json:"financialData"`
	DefaultKeyStatistics *keyStatisticsModule `json:"defaultKeyStatistics"`
}

type priceModule struct {
	Currency                   string     `json:"currency"`
	RegularMarketPrice         yahooValue `json:"regularMarketPrice"`
	RegularMarketOpen          yahooValue `json:"regularMarketOpen"`
	RegularMarketDayHigh       yahooValue `json:"regularMarketDayHigh"`
	RegularMarketDayLow        yahooValue `json:"regularMarketDayLow"`
	RegularMarketPreviousClose yahooValue `json:"regularMarketPreviousClose"`
	RegularMarketVolume        yahooValue `json:"regularMarketVolume"`
	MarketCap                  yahooValue `json:"marketCap"`
}

type summaryDetailModule struct {
	TrailingPE       yahooValue `json:"trailingPE"`
	DividendYield    yahooValue `json:"dividendYield"`
	FiftyTwoWeekHigh yahooValue `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  yahooValue `json:"fiftyTwoWeekLow"`
}

type financialDataModule struct {
	RecommendationKey       string     `json:"recommendationKey"`
	RecommendationMean      yahooValue `json:"recommendationMean"`
	NumberOfAnalystOpinions yahooValue `json:"numberOfAnalystOpinions"`
	TargetMeanPrice         yahooValue `json:"targetMeanPrice"`
	TargetHighPrice         yahooValue `json:"targetHighPrice"`
	TargetLowPrice          yahooValue `json:"targetLowPrice"`
	ProfitMargins           yahooValue `json:"profitMargins"`
	OperatingMargins        yahooValue `json:"operatingMargins"`
	RevenueGrowth           yahooValue `json:"revenueGrowth"`
	EarningsGrowth          yahooValue `json:"earningsGrowth"`
	ReturnOnEquity          yahooValue `json:"returnOnEquity"`
	DebtToEquity            yahooValue `json:"debtToEquity"`
}

type keyStatisticsModule struct {
	ForwardPE   yahooValue `json:"forwardPE"`
	PegRatio    yahooValue `json:"pegRatio"`
	PriceToBook yahooValue `json:"priceToBook"`
}

type newsSearchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}
