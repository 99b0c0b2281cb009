package names

// Japanese display names of the main islands of Japan.
var islandNames = map[string]string{
	"本州":   "Honshu",
	"北海道":  "Hokkaido",
	"九州":   "Kyushu",
	"四国":   "Shikoku",
	"沖縄本島": "Okinawa Island",
	"沖縄":   "Okinawa Island",
	"佐渡島":  "Sado Island",
	"佐渡":   "Sado Island",
	"淡路島":  "Awaji Island",
	"淡路":   "Awaji Island",
	"対馬":   "Tsushima",
	"壱岐":   "Iki",
	"種子島":  "Tanegashima",
	"屋久島":  "Yakushima",
	"奄美大島": "Amami Oshima",
	"石垣島":  "Ishigaki Island",
	"宮古島":  "Miyako Island",
}

// Japanese display names of countries.
var countryNames = map[string]string{
	"日本":       "Japan",
	"アメリカ":     "United States",
	"アメリカ合衆国":  "United States",
	"米国":       "United States",
	"イギリス":     "United Kingdom",
	"英国":       "United Kingdom",
	"フランス":     "France",
	"ドイツ":      "Germany",
	"イタリア":     "Italy",
	"スペイン":     "Spain",
	"カナダ":      "Canada",
	"中国":       "China",
	"韓国":       "South Korea",
	"北朝鮮":      "North Korea",
	"ロシア":      "Russia",
	"オーストラリア":  "Australia",
	"ブラジル":     "Brazil",
	"インド":      "India",
	"メキシコ":     "Mexico",
	"アルゼンチン":   "Argentina",
	"エジプト":     "Egypt",
	"南アフリカ":    "South Africa",
	"タイ":       "Thailand",
	"ベトナム":     "Vietnam",
	"フィリピン":    "Philippines",
	"インドネシア":   "Indonesia",
	"マレーシア":    "Malaysia",
	"シンガポール":   "Singapore",
	"ニュージーランド": "New Zealand",
	"トルコ":      "Turkey",
	"ギリシャ":     "Greece",
	"ポーランド":    "Poland",
	"オランダ":     "Netherlands",
	"ベルギー":     "Belgium",
	"スイス":      "Switzerland",
	"オーストリア":   "Austria",
	"スウェーデン":   "Sweden",
	"ノルウェー":    "Norway",
	"デンマーク":    "Denmark",
	"フィンランド":   "Finland",
	"ポルトガル":    "Portugal",
	"チェコ":      "Czech Republic",
	"ハンガリー":    "Hungary",
	"ルーマニア":    "Romania",
	"ウクライナ":    "Ukraine",
	"サウジアラビア":  "Saudi Arabia",
	"イラン":      "Iran",
	"イラク":      "Iraq",
	"イスラエル":    "Israel",
	"チリ":       "Chile",
	"ペルー":      "Peru",
	"コロンビア":    "Colombia",
	"ベネズエラ":    "Venezuela",
	"アイスランド":   "Iceland",
	"グリーンランド":  "Greenland",
}
