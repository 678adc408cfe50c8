package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/pkg/ebay"
)

// ==================== Mock ====================

type mockTokenProvider struct {
	fetchFn func(ctx context.Context, sandbox bool) (string, error)
}

func (m *mockTokenProvider) FetchAppToken(ctx context.Context, sandbox bool) (string, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, sandbox)
	}
	return "app-token", nil
}

func newTestCategoryService(baseURL string, tokens AppTokenProvider) *CategoryService {
	if tokens == nil {
		tokens = &mockTokenProvider{}
	}
	svc := NewCategoryService(tokens)
	svc.BaseURL = baseURL
	svc.SandboxBaseURL = baseURL
	return svc
}

// ==================== Taxonomy 命中 ====================

func TestClassify_TaxonomyHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "get_default_category_tree_id"):
			w.Write([]byte(`{"categoryTreeId":"0"}`))
		case strings.Contains(r.URL.Path, "get_category_suggestions"):
			if q := r.URL.Query().Get("q"); len(q) > 100 {
				t.Errorf("查询串超长: %d", len(q))
			}
			w.Write([]byte(`{"categorySuggestions":[{"category":{"categoryId":"112529","categoryName":"Headphones"},"leafCategoryTreeNode":true}]}`))
		case strings.Contains(r.URL.Path, "get_item_aspects_for_category"):
			w.Write([]byte(`{"aspects":[
				{"localizedAspectName":"Brand","aspectConstraint":{"aspectRequired":true}},
				{"localizedAspectName":"Connectivity","aspectConstraint":{"aspectRequired":true}},
				{"localizedAspectName":"Features","aspectConstraint":{"aspectRequired":false}}
			]}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	svc := newTestCategoryService(srv.URL, nil)
	result := svc.Classify(context.Background(), "Wireless Bluetooth Headphones", "great headphones", false)

	if result.CategoryID != "112529" {
		t.Errorf("CategoryID = %q", result.CategoryID)
	}
	if result.Source != model.CategorySourceTaxonomy {
		t.Errorf("Source = %q, 期望 taxonomy_api", result.Source)
	}
	// 只收必填 aspect
	if len(result.RequiredAspects) != 2 {
		t.Errorf("RequiredAspects = %v", result.RequiredAspects)
	}
	if result.Family != ebay.FamilyElectronics {
		t.Errorf("Family = %v", result.Family)
	}
}

// ==================== 探活短路 ====================

func TestClassify_ProbeFailureShortCircuits(t *testing.T) {
	suggestionCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "get_default_category_tree_id"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.Contains(r.URL.Path, "get_category_suggestions"):
			suggestionCalls++
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	svc := newTestCategoryService(srv.URL, nil)
	result := svc.Classify(context.Background(), "Wireless Headphones", "headphones", false)

	if suggestionCalls != 0 {
		t.Errorf("探活失败后不应再调建议接口，实际调了 %d 次", suggestionCalls)
	}
	// 落到核验表
	if result.Source != model.CategorySourceVerified {
		t.Errorf("Source = %q, 期望 verified_fallback", result.Source)
	}
	if result.CategoryID != "112529" {
		t.Errorf("CategoryID = %q", result.CategoryID)
	}
}

func TestClassify_TokenFailureSkipsTaxonomy(t *testing.T) {
	taxonomyCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		taxonomyCalls++
	}))
	defer srv.Close()

	tokens := &mockTokenProvider{
		fetchFn: func(ctx context.Context, sandbox bool) (string, error) {
			return "", errors.New("oauth down")
		},
	}
	svc := newTestCategoryService(srv.URL, tokens)
	result := svc.Classify(context.Background(), "Smart Watch Pro", "smartwatch", false)

	if taxonomyCalls != 0 {
		t.Errorf("没有 Token 不应发任何 taxonomy 请求，实际 %d 次", taxonomyCalls)
	}
	if result.Source != model.CategorySourceVerified {
		t.Errorf("Source = %q", result.Source)
	}
}

// ==================== 非叶子降级 ====================

func TestClassify_NonLeafCategoryFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "get_default_category_tree_id"):
			w.Write([]byte(`{"categoryTreeId":"0"}`))
		case strings.Contains(r.URL.Path, "get_category_suggestions"):
			w.Write([]byte(`{"categorySuggestions":[{"category":{"categoryId":"293","categoryName":"Consumer Electronics"}}]}`))
		case strings.Contains(r.URL.Path, "get_item_aspects_for_category"):
			// 非叶子类目查 aspect 报错
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	svc := newTestCategoryService(srv.URL, nil)
	result := svc.Classify(context.Background(), "Bluetooth Speaker", "portable speaker", false)

	if result.Source != model.CategorySourceVerified {
		t.Errorf("叶子校验失败应降级到核验表: Source = %q", result.Source)
	}
	if result.CategoryID != "111694" {
		t.Errorf("CategoryID = %q", result.CategoryID)
	}
}

// ==================== 关键词兜底排序 ====================

// 具体词必须先于泛词命中
func TestClassifyByKeywords_SpecificBeforeGeneric(t *testing.T) {
	svc := NewCategoryService(&mockTokenProvider{})

	cases := []struct {
		text   string
		wantID string
	}{
		// "headphone" 在 "phone" 前
		{"wireless bluetooth headphones for phone calls", "112529"},
		// "smartwatch" 在 "watch" 前
		{"smartwatch with fitness tracking", "178893"},
		{"classic automatic wristwatch", "31387"},
		// "laptop" 在 "phone" 前
		{"laptop with phone sync app", "177"},
		{"air fryer for the modern kitchen", "20667"},
		// "sneaker" 先于服饰泛词
		{"lightweight running shoe sneaker", "15709"},
		{"samsung smartphone 128gb", "9355"},
		{"denim jeans relaxed fit", "11483"},
		{"usb-c charger cable", "293"},
	}

	for _, c := range cases {
		result := svc.classifyByKeywords(c.text)
		if result == nil {
			t.Errorf("classifyByKeywords(%q) 未命中", c.text)
			continue
		}
		if result.CategoryID != c.wantID {
			t.Errorf("classifyByKeywords(%q) = %s, 期望 %s", c.text, result.CategoryID, c.wantID)
		}
	}
}

// ==================== 保底类目 ====================

func TestClassify_BulletproofNeverEmpty(t *testing.T) {
	tokens := &mockTokenProvider{
		fetchFn: func(ctx context.Context, sandbox bool) (string, error) {
			return "", errors.New("down")
		},
	}
	svc := NewCategoryService(tokens)

	result := svc.Classify(context.Background(), "xyzzy frobnicator", "completely unmatchable gibberish", false)
	if result == nil {
		t.Fatal("分类永远不能返回 nil")
	}
	if result.CategoryID != BulletproofCategoryID {
		t.Errorf("CategoryID = %q, 期望保底 %q", result.CategoryID, BulletproofCategoryID)
	}
	if result.Source != model.CategorySourceBulletproof {
		t.Errorf("Source = %q", result.Source)
	}
}

// ==================== 查询清洗 ====================

func TestCleanTaxonomyQuery(t *testing.T) {
	got := cleanTaxonomyQuery("Noise-Cancelling   Headphones! (2024 Edition)")
	if strings.ContainsAny(got, "-!()") {
		t.Errorf("标点应被清除: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("多余空格应收敛: %q", got)
	}

	long := strings.Repeat("headphones ", 20)
	cleaned := cleanTaxonomyQuery(long)
	if len(cleaned) > 100 {
		t.Errorf("查询串超过 100 字符: %d", len(cleaned))
	}
	if strings.HasSuffix(cleaned, " ") {
		t.Errorf("不应以空格结尾: %q", cleaned)
	}
}
