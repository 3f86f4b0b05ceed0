package extractor

import (
	"time"

	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/models"
)

// genericContentChain covers the common article containers; site-specific
// selectors go first in each spec and these close the fallback chain.
var genericContentChain = []string{
	"article p",
	".article-body p",
	".article-content p",
	".content p",
	".entry-content p",
	"main p",
}

func withGenericChain(selectors ...string) []string {
	return append(selectors, genericContentChain...)
}

// Registry builds every configured source extractor. Sources live here as
// data; the coordinator never knows about individual sites.
func Registry(fetcher *Fetcher, delay time.Duration, loc *time.Location, logger *zap.Logger) []Extractor {
	var extractors []Extractor

	// Korean outlets (already in the target language, translation-exempt).
	feeds := []FeedSpec{
		{
			Name:     "yonhap",
			FeedURL:  "https://www.yna.co.kr/rss/news.xml",
			Category: models.CategorySociety,
			MaxItems: 20,
		},
		{
			Name:         "kbs-world",
			FeedURL:      "https://world.kbs.co.kr/rss/rss_news.htm",
			Category:     models.CategorySociety,
			MaxItems:     15,
			MinBodyChars: 200,
			ContentSelectors: withGenericChain(
				".news-detail-txt",
				"#cont_newsview",
			),
		},
		{
			Name:     "korea-net",
			FeedURL:  "https://www.korea.net/rss/news.xml",
			Category: models.CategoryKoreaVietnam,
			MaxItems: 10,
		},
		// Vietnamese outlets.
		{
			Name:         "vnexpress",
			FeedURL:      "https://vnexpress.net/rss/tin-moi-nhat.rss",
			Category:     models.CategorySociety,
			MaxItems:     30,
			MinBodyChars: 300,
			ContentSelectors: withGenericChain(
				"article.fck_detail p.Normal",
				".fck_detail p",
			),
		},
		{
			Name:         "tuoitre",
			FeedURL:      "https://tuoitre.vn/rss/tin-moi-nhat.rss",
			Category:     models.CategorySociety,
			MaxItems:     25,
			MinBodyChars: 300,
			ContentSelectors: withGenericChain(
				".detail-content p",
				"#main-detail-body p",
			),
		},
		{
			Name:         "thanhnien",
			FeedURL:      "https://thanhnien.vn/rss/home.rss",
			Category:     models.CategorySociety,
			MaxItems:     25,
			MinBodyChars: 300,
			ContentSelectors: withGenericChain(
				".detail-content p",
				"#abody p",
			),
		},
		{
			Name:         "dantri",
			FeedURL:      "https://dantri.com.vn/rss/home.rss",
			Category:     models.CategorySociety,
			MaxItems:     20,
			MinBodyChars: 300,
			ContentSelectors: withGenericChain(
				".singular-content p",
				".dt-news__content p",
			),
		},
		{
			Name:     "vietnamplus",
			FeedURL:  "https://www.vietnamplus.vn/rss/news.rss",
			Category: models.CategoryInternational,
			MaxItems: 15,
		},
		{
			Name:     "vietnamnews",
			FeedURL:  "https://vietnamnews.vn/rss/news.rss",
			Category: models.CategoryEconomy,
			MaxItems: 15,
		},
		{
			Name:     "cafef",
			FeedURL:  "https://cafef.vn/trang-chu.rss",
			Category: models.CategoryEconomy,
			MaxItems: 20,
		},
	}

	for _, spec := range feeds {
		extractors = append(extractors, NewRSSExtractor(spec, fetcher, delay, loc, logger))
	}

	sites := []SiteSpec{
		{
			Name:          "chosun",
			ListURL:       "https://www.chosun.com/national/",
			ItemSelector:  ".story-card",
			TitleSelector: ".story-card__headline",
			ContentSelectors: withGenericChain(
				".article-body .article-body__content p",
				"section.article-body p",
			),
			Category: models.CategoryPolitics,
			MaxItems: 10,
		},
		{
			Name:            "joongang",
			ListURL:         "https://www.joongang.co.kr/sectionlist/economy",
			ItemSelector:    ".card",
			TitleSelector:   ".headline",
			SummarySelector: ".description",
			ContentSelectors: withGenericChain(
				"#article_body p",
				".article_body p",
			),
			Category: models.CategoryEconomy,
			MaxItems: 10,
		},
		{
			Name:          "hankyoreh",
			ListURL:       "https://www.hani.co.kr/arti/society/",
			ItemSelector:  ".article-prev-area .article",
			TitleSelector: ".article-title",
			ContentSelectors: withGenericChain(
				".article-text p",
				".text p",
			),
			Category: models.CategorySociety,
			MaxItems: 10,
		},
		{
			Name:            "koreaherald",
			ListURL:         "https://www.koreaherald.com/National",
			ItemSelector:    ".news_list li",
			TitleSelector:   ".news_title",
			SummarySelector: ".news_text",
			ContentSelectors: withGenericChain(
				".article-text",
				".view_con_t",
			),
			Category: models.CategoryInternational,
			MaxItems: 10,
		},
		{
			Name:          "koreatimes",
			ListURL:       "https://www.koreatimes.co.kr/www2/index.asp",
			ItemSelector:  ".list_article li",
			TitleSelector: ".list_article_headline",
			ContentSelectors: withGenericChain(
				"#startts",
				".view_article",
			),
			Category: models.CategorySociety,
			MaxItems: 8,
		},
		{
			Name:          "arirang",
			ListURL:       "https://www.arirang.com/news/list?category=Korea",
			ItemSelector:  ".news-list-item",
			TitleSelector: ".title",
			ContentSelectors: withGenericChain(
				".news-view-content",
			),
			Category: models.CategoryCulture,
			MaxItems: 8,
		},
		{
			Name:            "insidevina",
			ListURL:         "http://www.insidevina.com/news/articleList.html?view_type=sm",
			ItemSelector:    ".article-list .list-block",
			TitleSelector:   ".list-titles a",
			SummarySelector: ".list-summary",
			DateSelector:    ".list-dated",
			ContentSelectors: withGenericChain(
				"#article-view-content-div p",
			),
			Category: models.CategoryKoreaVietnam,
			MaxItems: 15,
		},
		{
			Name:          "vina-times",
			ListURL:       "https://vina-times.com/category/community",
			ItemSelector:  "article.post",
			TitleSelector: ".entry-title",
			DateSelector:  ".entry-date",
			ContentSelectors: withGenericChain(
				".entry-content p",
			),
			Category: models.CategoryCommunity,
			MaxItems: 10,
		},
	}

	for _, spec := range sites {
		extractors = append(extractors, NewHTMLExtractor(spec, fetcher, delay, loc, logger))
	}

	return extractors
}
