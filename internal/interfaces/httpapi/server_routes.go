package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("POST /v1/teams", handler.SaveTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("DELETE /v1/teams/{teamID}", handler.DeleteTeam)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/{teamID}/players", handler.ListPlayersByTeam)
	mux.HandleFunc("POST /v1/teams/{teamID}/players", handler.SavePlayer)
	mux.HandleFunc("DELETE /v1/teams/{teamID}/players/{playerID}", handler.DeletePlayer)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/{teamID}/games", handler.ListGamesByTeam)
	mux.HandleFunc("POST /v1/teams/{teamID}/games", handler.SaveGame)
	mux.HandleFunc("GET /v1/teams/{teamID}/games/upcoming", handler.UpcomingGames)
	mux.HandleFunc("GET /v1/teams/{teamID}/games/past", handler.PastGames)
	mux.HandleFunc("DELETE /v1/teams/{teamID}/games/{gameID}", handler.DeleteGame)
	mux.HandleFunc("GET /v1/games/{gameID}", handler.GetGame)
}

func registerLineupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/{teamID}/lineups", handler.ListLineupsByTeam)
	mux.HandleFunc("POST /v1/teams/{teamID}/lineups", handler.SaveLineup)
	mux.HandleFunc("GET /v1/teams/{teamID}/lineups/templates", handler.ListLineupTemplates)
	mux.HandleFunc("GET /v1/teams/{teamID}/lineups/default", handler.GetDefaultLineup)
	mux.HandleFunc("PUT /v1/teams/{teamID}/lineups/default", handler.SetDefaultLineup)
	mux.HandleFunc("DELETE /v1/teams/{teamID}/lineups/{lineupID}", handler.DeleteLineup)
	mux.HandleFunc("GET /v1/teams/{teamID}/games/{gameID}/lineup", handler.GetLineupByGame)
	mux.HandleFunc("GET /v1/lineups/{lineupID}", handler.GetLineup)
}

func registerPositionHistoryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/{teamID}/position-histories", handler.ListPositionHistoriesByTeam)
	mux.HandleFunc("POST /v1/teams/{teamID}/position-histories", handler.SavePositionHistory)
	mux.HandleFunc("DELETE /v1/teams/{teamID}/position-histories/{historyID}", handler.DeletePositionHistory)
	mux.HandleFunc("GET /v1/position-histories/{historyID}", handler.GetPositionHistory)
}

func registerPracticeRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/{teamID}/practices", handler.ListPracticesByTeam)
	mux.HandleFunc("POST /v1/teams/{teamID}/practices", handler.SavePractice)
	mux.HandleFunc("GET /v1/teams/{teamID}/practices/upcoming", handler.UpcomingPractices)
	mux.HandleFunc("GET /v1/teams/{teamID}/practices/past", handler.PastPractices)
	mux.HandleFunc("DELETE /v1/teams/{teamID}/practices/{practiceID}", handler.DeletePractice)
	mux.HandleFunc("GET /v1/practices/{practiceID}", handler.GetPractice)
}

func registerSettingsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/settings", handler.GetSettings)
	mux.HandleFunc("PUT /v1/settings", handler.SaveSettings)
}

func registerSyncRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/status", handler.GetStatus)
	mux.HandleFunc("POST /v1/connection/online", handler.GoOnline)
	mux.HandleFunc("POST /v1/connection/offline", handler.GoOffline)
	mux.HandleFunc("POST /v1/sync/pending", handler.SyncPending)
	mux.HandleFunc("POST /v1/sync/full", handler.FullSync)
	mux.HandleFunc("POST /v1/sync/download", handler.DownloadAll)
}
