package tests

import (
	"net/http"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"
)

// ReservationData 测试断言用的预订响应字段
type ReservationData struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	KindCoinsEarned int    `json:"kindcoins_earned"`
}

// listingData 测试断言用的发布响应字段
type listingData struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	ProviderType      string  `json:"provider_type"`
	Quantity          int     `json:"quantity"`
	AvailableQuantity int     `json:"available_quantity"`
	Status            string  `json:"status"`
	Rating            float64 `json:"rating"`
	RatingCount       int     `json:"rating_count"`
	CO2Saved          float64 `json:"co2_saved"`
}

func TestFoodReservationFlow(t *testing.T) {
	Convey("食物发布与预订流程", t, func() {
		providerToken, _ := registerAndLogin(t, "food_provider@test.local", "restaurant")
		seekerToken, seekerID := registerAndLogin(t, "food_seeker@test.local", "seeker")
		So(seekerID, ShouldNotBeEmpty)

		// 供餐方发布食物
		w := doRequest(http.MethodPost, "/api/v1/food/listings", providerToken, map[string]interface{}{
			"name":             "Surplus sourdough bread",
			"description":      "Baked this morning, five loaves left",
			"original_price":   6.0,
			"discounted_price": 2.0,
			"quantity":         5,
			"pickup_date":      "2030-09-01",
			"pickup_start":     "17:00",
			"pickup_end":       "19:00",
			"location":         "12 Baker Street",
			"co2_saved":        1.5,
		})
		So(w.Code, ShouldEqual, http.StatusOK)

		var listing listingData
		decodeData(t, parseResponse(t, w), &listing)
		So(listing.ID, ShouldNotBeEmpty)
		So(listing.ProviderType, ShouldEqual, "restaurant")
		So(listing.AvailableQuantity, ShouldEqual, 5)
		So(listing.Status, ShouldEqual, "available")

		// 觅食者角色不能发布食物
		w = doRequest(http.MethodPost, "/api/v1/food/listings", seekerToken, map[string]interface{}{
			"name":         "Not allowed",
			"quantity":     1,
			"pickup_date":  "2030-09-01",
			"pickup_start": "17:00",
			"pickup_end":   "19:00",
			"location":     "nowhere",
		})
		So(w.Code, ShouldEqual, http.StatusForbidden)
		So(parseResponse(t, w).Code, ShouldEqual, 40302)

		// 公开列表可以看到发布
		w = doRequest(http.MethodGet, "/api/v1/food/listings?search=sourdough", "", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var listResp struct {
			Listings []listingData `json:"listings"`
		}
		decodeData(t, parseResponse(t, w), &listResp)
		So(len(listResp.Listings), ShouldBeGreaterThanOrEqualTo, 1)

		// 预订扣减库存并发放KindCoins
		w = doRequest(http.MethodPost, "/api/v1/food/reservations", seekerToken, map[string]interface{}{
			"listing_id": listing.ID,
			"quantity":   2,
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var reserveResp struct {
			Reservation struct {
				ID              string `json:"id"`
				Status          string `json:"status"`
				KindCoinsEarned int    `json:"kindcoins_earned"`
			} `json:"reservation"`
			CoinsEarned int         `json:"coins_earned"`
			Listing     listingData `json:"listing"`
		}
		decodeData(t, parseResponse(t, w), &reserveResp)
		So(reserveResp.Reservation.Status, ShouldEqual, "pending")
		// 基础奖励 10*2，CO2奖励 int(1.5*5)
		So(reserveResp.CoinsEarned, ShouldEqual, 27)
		So(reserveResp.Listing.AvailableQuantity, ShouldEqual, 3)

		// 用户余额同步增加
		w = doRequest(http.MethodGet, "/api/v1/auth/me", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var me struct {
			KindCoins uint64 `json:"kind_coins"`
		}
		decodeData(t, parseResponse(t, w), &me)
		So(me.KindCoins, ShouldEqual, 27)

		// 预订列表带累计奖励
		w = doRequest(http.MethodGet, "/api/v1/food/reservations", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var myReservations struct {
			Reservations         []ReservationData `json:"reservations"`
			TotalKindCoinsEarned int64             `json:"total_kindcoins_earned"`
		}
		decodeData(t, parseResponse(t, w), &myReservations)
		So(len(myReservations.Reservations), ShouldEqual, 1)
		So(myReservations.TotalKindCoinsEarned, ShouldEqual, 27)

		// 同一发布不能重复预订
		w = doRequest(http.MethodPost, "/api/v1/food/reservations", seekerToken, map[string]interface{}{
			"listing_id": listing.ID,
			"quantity":   1,
		})
		So(w.Code, ShouldEqual, http.StatusConflict)
		So(parseResponse(t, w).Code, ShouldEqual, 40903)

		// 库存不足时预订失败
		otherToken, _ := registerAndLogin(t, "food_seeker2@test.local", "seeker")
		w = doRequest(http.MethodPost, "/api/v1/food/reservations", otherToken, map[string]interface{}{
			"listing_id": listing.ID,
			"quantity":   10,
		})
		So(w.Code, ShouldEqual, http.StatusConflict)
		So(parseResponse(t, w).Code, ShouldEqual, 40902)

		// 取消预订回补库存并扣回奖励
		w = doRequest(http.MethodPost, "/api/v1/food/reservations/"+reserveResp.Reservation.ID+"/cancel", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/food/listings/"+listing.ID, "", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var after listingData
		decodeData(t, parseResponse(t, w), &after)
		So(after.AvailableQuantity, ShouldEqual, 5)

		w = doRequest(http.MethodGet, "/api/v1/auth/me", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var meAfter struct {
			KindCoins uint64 `json:"kind_coins"`
		}
		decodeData(t, parseResponse(t, w), &meAfter)
		So(meAfter.KindCoins, ShouldEqual, 0)
	})
}

func TestReservationLifecycle(t *testing.T) {
	Convey("预订状态流转", t, func() {
		providerToken, _ := registerAndLogin(t, "lifecycle_provider@test.local", "supermarket")
		seekerToken, _ := registerAndLogin(t, "lifecycle_seeker@test.local", "seeker")

		w := doRequest(http.MethodPost, "/api/v1/food/listings", providerToken, map[string]interface{}{
			"name":         "Fruit box",
			"quantity":     3,
			"pickup_date":  "2030-09-02",
			"pickup_start": "10:00",
			"pickup_end":   "12:00",
			"location":     "Market hall",
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var listing listingData
		decodeData(t, parseResponse(t, w), &listing)

		w = doRequest(http.MethodPost, "/api/v1/food/reservations", seekerToken, map[string]interface{}{
			"listing_id": listing.ID,
			"quantity":   1,
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var reserveResp struct {
			Reservation struct {
				ID string `json:"id"`
			} `json:"reservation"`
		}
		decodeData(t, parseResponse(t, w), &reserveResp)
		reservationID := reserveResp.Reservation.ID

		// 其他用户不能查看这份预订
		otherToken, _ := registerAndLogin(t, "lifecycle_other@test.local", "seeker")
		w = doRequest(http.MethodGet, "/api/v1/food/reservations/"+reservationID, otherToken, nil)
		So(w.Code, ShouldEqual, http.StatusForbidden)

		// 供餐方确认
		w = doRequest(http.MethodPost, "/api/v1/food/reservations/"+reservationID+"/confirm", providerToken, map[string]interface{}{
			"provider_notes": "Ready at the back door",
		})
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/food/reservations/"+reservationID, seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var confirmed struct {
			Status        string `json:"status"`
			ProviderNotes string `json:"provider_notes"`
			ConfirmedAt   string `json:"confirmed_at"`
		}
		decodeData(t, parseResponse(t, w), &confirmed)
		So(confirmed.Status, ShouldEqual, "confirmed")
		So(confirmed.ProviderNotes, ShouldEqual, "Ready at the back door")
		So(confirmed.ConfirmedAt, ShouldNotBeEmpty)

		// 觅食者取餐
		w = doRequest(http.MethodPost, "/api/v1/food/reservations/"+reservationID+"/pickup", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/food/reservations/"+reservationID, seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var picked struct {
			Status     string `json:"status"`
			PickedUpAt string `json:"picked_up_at"`
		}
		decodeData(t, parseResponse(t, w), &picked)
		So(picked.Status, ShouldEqual, "picked_up")
		So(picked.PickedUpAt, ShouldNotBeEmpty)

		// 取餐后不能再取消
		w = doRequest(http.MethodPost, "/api/v1/food/reservations/"+reservationID+"/cancel", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusConflict)

		// 取餐后可以评分
		w = doRequest(http.MethodPost, "/api/v1/food/listings/"+listing.ID+"/ratings", seekerToken, map[string]interface{}{
			"rating": 5,
			"review": "Fresh and generous portions",
		})
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/food/listings/"+listing.ID, "", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var rated listingData
		decodeData(t, parseResponse(t, w), &rated)
		So(rated.Rating, ShouldEqual, 5.0)
		So(rated.RatingCount, ShouldEqual, 1)

		// 不存在的图片查不到下载地址
		w = doRequest(http.MethodGet, "/api/v1/food/images/not-a-real-image/url", "", nil)
		So(w.Code, ShouldEqual, http.StatusNotFound)
		So(parseResponse(t, w).Code, ShouldEqual, 40406)
	})
}

func TestConcurrentReserve(t *testing.T) {
	Convey("并发预订同一发布", t, func() {
		providerToken, _ := registerAndLogin(t, "race_provider@test.local", "factory")
		tokenA, _ := registerAndLogin(t, "race_seeker_a@test.local", "seeker")
		tokenB, _ := registerAndLogin(t, "race_seeker_b@test.local", "seeker")

		w := doRequest(http.MethodPost, "/api/v1/food/listings", providerToken, map[string]interface{}{
			"name":         "Bulk rice packs",
			"quantity":     3,
			"pickup_date":  "2030-09-04",
			"pickup_start": "09:00",
			"pickup_end":   "11:00",
			"location":     "Warehouse 4",
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var listing listingData
		decodeData(t, parseResponse(t, w), &listing)

		// 两个用户同时各订3件，库存只有3件，只允许一个成功
		tokens := []string{tokenA, tokenB}
		codes := make([]int, len(tokens))
		var wg sync.WaitGroup
		for i, token := range tokens {
			wg.Add(1)
			go func(i int, token string) {
				defer wg.Done()
				resp := doRequest(http.MethodPost, "/api/v1/food/reservations", token, map[string]interface{}{
					"listing_id": listing.ID,
					"quantity":   3,
				})
				codes[i] = resp.Code
			}(i, token)
		}
		wg.Wait()

		okCount, conflictCount := 0, 0
		for _, code := range codes {
			switch code {
			case http.StatusOK:
				okCount++
			case http.StatusConflict:
				conflictCount++
			}
		}
		So(okCount, ShouldEqual, 1)
		So(conflictCount, ShouldEqual, 1)

		// 库存扣到0不为负，发布翻转为reserved
		w = doRequest(http.MethodGet, "/api/v1/food/listings/"+listing.ID, "", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var after listingData
		decodeData(t, parseResponse(t, w), &after)
		So(after.AvailableQuantity, ShouldEqual, 0)
		So(after.Status, ShouldEqual, "reserved")
	})
}

func TestCoinRevokeGuard(t *testing.T) {
	Convey("余额不足整笔收回时取消不把KindCoins扣成负数", t, func() {
		providerToken, _ := registerAndLogin(t, "guard_provider@test.local", "retail")
		seekerToken, seekerID := registerAndLogin(t, "guard_seeker@test.local", "seeker")

		w := doRequest(http.MethodPost, "/api/v1/food/listings", providerToken, map[string]interface{}{
			"name":         "Day-old pastries",
			"quantity":     2,
			"pickup_date":  "2030-09-05",
			"pickup_start": "16:00",
			"pickup_end":   "18:00",
			"location":     "Corner shop",
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var listing listingData
		decodeData(t, parseResponse(t, w), &listing)

		w = doRequest(http.MethodPost, "/api/v1/food/reservations", seekerToken, map[string]interface{}{
			"listing_id": listing.ID,
			"quantity":   2,
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var reserveResp struct {
			Reservation ReservationData `json:"reservation"`
			CoinsEarned int             `json:"coins_earned"`
		}
		decodeData(t, parseResponse(t, w), &reserveResp)
		So(reserveResp.CoinsEarned, ShouldEqual, 20)

		// 把余额改到低于应收回的数额，模拟奖励发放中断后的状态
		users := testMongoClient.Database(testDatabase).Collection("users")
		_, err := users.UpdateOne(testCtx, bson.M{"_id": seekerID}, bson.M{"$set": bson.M{"kind_coins": 5}})
		So(err, ShouldBeNil)

		w = doRequest(http.MethodPost, "/api/v1/food/reservations/"+reserveResp.Reservation.ID+"/cancel", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		// 余额保持非负，账号仍可正常查询
		w = doRequest(http.MethodGet, "/api/v1/auth/me", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var me struct {
			KindCoins uint64 `json:"kind_coins"`
		}
		decodeData(t, parseResponse(t, w), &me)
		So(me.KindCoins, ShouldEqual, 5)

		// 库存照常回补
		w = doRequest(http.MethodGet, "/api/v1/food/listings/"+listing.ID, "", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var after listingData
		decodeData(t, parseResponse(t, w), &after)
		So(after.AvailableQuantity, ShouldEqual, 2)
	})
}

func TestNoShowFlow(t *testing.T) {
	Convey("未到店标记", t, func() {
		providerToken, _ := registerAndLogin(t, "noshow_provider@test.local", "home")
		seekerToken, _ := registerAndLogin(t, "noshow_seeker@test.local", "seeker")

		w := doRequest(http.MethodPost, "/api/v1/food/listings", providerToken, map[string]interface{}{
			"name":             "Homemade dumplings",
			"discounted_price": 0.0,
			"quantity":         4,
			"pickup_date":      "2030-09-03",
			"pickup_start":     "18:00",
			"pickup_end":       "20:00",
			"location":         "5 Elm Road",
			"co2_saved":        1.0,
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var listing listingData
		decodeData(t, parseResponse(t, w), &listing)

		// 免费筛选能命中0元发布
		w = doRequest(http.MethodGet, "/api/v1/food/listings?is_free=true&search=dumplings", "", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var freeResp struct {
			Listings []listingData `json:"listings"`
		}
		decodeData(t, parseResponse(t, w), &freeResp)
		So(len(freeResp.Listings), ShouldBeGreaterThanOrEqualTo, 1)

		w = doRequest(http.MethodPost, "/api/v1/food/reservations", seekerToken, map[string]interface{}{
			"listing_id": listing.ID,
			"quantity":   2,
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var reserveResp struct {
			Reservation struct {
				ID string `json:"id"`
			} `json:"reservation"`
		}
		decodeData(t, parseResponse(t, w), &reserveResp)
		reservationID := reserveResp.Reservation.ID

		// 觅食者无权标记未到店
		w = doRequest(http.MethodPost, "/api/v1/food/reservations/"+reservationID+"/noshow", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusForbidden)
		So(parseResponse(t, w).Code, ShouldEqual, 40304)

		// 供餐方标记未到店，库存回补、奖励收回
		w = doRequest(http.MethodPost, "/api/v1/food/reservations/"+reservationID+"/noshow", providerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/food/reservations/"+reservationID, seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var marked struct {
			Status string `json:"status"`
		}
		decodeData(t, parseResponse(t, w), &marked)
		So(marked.Status, ShouldEqual, "no_show")

		w = doRequest(http.MethodGet, "/api/v1/food/listings/"+listing.ID, "", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var after listingData
		decodeData(t, parseResponse(t, w), &after)
		So(after.AvailableQuantity, ShouldEqual, 4)

		w = doRequest(http.MethodGet, "/api/v1/auth/me", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var me struct {
			KindCoins uint64 `json:"kind_coins"`
		}
		decodeData(t, parseResponse(t, w), &me)
		So(me.KindCoins, ShouldEqual, 0)

		// 已是终态，不能再取消
		w = doRequest(http.MethodPost, "/api/v1/food/reservations/"+reservationID+"/cancel", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusConflict)
		So(parseResponse(t, w).Code, ShouldEqual, 40904)
	})
}
