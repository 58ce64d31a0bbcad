package models

// ParquetListingRecord is the archived form of a ListingRecord
type ParquetListingRecord struct {
	SessionID  string  `parquet:"session_id"`
	Position   int32   `parquet:"position"`
	Title      string  `parquet:"title"`
	Price      string  `parquet:"price"`
	Year       *string `parquet:"year,optional"`
	Mileage    *string `parquet:"mileage,optional"`
	Brand      string  `parquet:"brand"`
	Model      string  `parquet:"model"`
	Location   *string `parquet:"location,optional"`
	Image      *string `parquet:"image,optional"`
	Link       string  `parquet:"link"`
	Source     string  `parquet:"source"`
	SearchedAt int64   `parquet:"searched_at"` // unix millis
}
